package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

const predictionExportPrefix = "predictions"

// PredictionExportKey is predictions/<owner>/<yyyy-mm-dd>/<job-id>.json, dated
// by the report's as-of instant in UTC.
func PredictionExportKey(job *domain.PredictionJob) string {
	asOf := job.StartedAt
	if job.Report != nil && !job.Report.AsOf.IsZero() {
		asOf = job.Report.AsOf
	}
	return fmt.Sprintf("%s/%d/%s/%s.json", predictionExportPrefix, job.OwnerID, asOf.UTC().Format("2006-01-02"), job.ID)
}

// OwnerExportPrefix lists every export of an owner.
func OwnerExportPrefix(ownerID int64) string {
	return fmt.Sprintf("%s/%d/", predictionExportPrefix, ownerID)
}

// ExportPredictionJob uploads the job as JSON and returns the object key.
func ExportPredictionJob(ctx context.Context, store ObjectStorage, job *domain.PredictionJob) (string, error) {
	key := PredictionExportKey(job)
	payload, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prediction job %s: %w", job.ID, err)
	}
	if err := store.UploadObject(ctx, key, payload); err != nil {
		return "", err
	}
	return key, nil
}
