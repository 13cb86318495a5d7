package service

import (
	"context"
	"fmt"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/cache"
	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/spoilage"
	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultAlertHorizonDays = 3

// RiskEngine is the subset of *spoilage.Engine the service drives.
type RiskEngine interface {
	ComputeAllRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error)
	ComputeAllPredictions(ctx context.Context, ownerID int64) (*domain.PredictionReport, error)
	Assess(ctx context.Context, ownerID int64, snapshot domain.InventorySnapshot) (*domain.SpoilageRisk, error)
	Now() time.Time
}

// ProductLookup resolves a single inventory row.
type ProductLookup interface {
	GetInventoryItem(ctx context.Context, ownerID, productID int64) (*domain.InventorySnapshot, error)
}

type SpoilageService struct {
	engine       RiskEngine
	inventory    ProductLookup
	jobs         cache.PredictionJobStore
	exports      storage.ObjectStorage
	alertHorizon int
	newID        func() string
}

// NewSpoilageService wires the service. jobs and exports may be nil; exports
// are skipped when no object storage is configured.
func NewSpoilageService(engine RiskEngine, inventory ProductLookup, jobs cache.PredictionJobStore, exports storage.ObjectStorage, alertHorizonDays int) *SpoilageService {
	if jobs == nil {
		jobs = cache.NewNoopPredictionJobStore()
	}
	if alertHorizonDays <= 0 {
		alertHorizonDays = defaultAlertHorizonDays
	}
	return &SpoilageService{
		engine:       engine,
		inventory:    inventory,
		jobs:         jobs,
		exports:      exports,
		alertHorizon: alertHorizonDays,
		newID:        uuid.NewString,
	}
}

func (s *SpoilageService) GetRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error) {
	return s.engine.ComputeAllRisks(ctx, ownerID)
}

func (s *SpoilageService) GetPredictions(ctx context.Context, ownerID int64) (*domain.PredictionReport, error) {
	return s.engine.ComputeAllPredictions(ctx, ownerID)
}

// GetProductRisk scores one product. Unknown products wrap spoilage.ErrProductNotFound.
func (s *SpoilageService) GetProductRisk(ctx context.Context, ownerID, productID int64) (*domain.SpoilageRisk, error) {
	item, err := s.inventory.GetInventoryItem(ctx, ownerID, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", spoilage.ErrInventoryUnavailable, err)
	}
	if item == nil {
		return nil, fmt.Errorf("product %d for owner %d: %w", productID, ownerID, spoilage.ErrProductNotFound)
	}
	return s.engine.Assess(ctx, ownerID, *item)
}

// AlertHorizonDays is the horizon used when callers pass none.
func (s *SpoilageService) AlertHorizonDays() int {
	return s.alertHorizon
}

// GetCriticalAlerts keeps high and critical items expiring within horizonDays.
// Already expired items are included.
func (s *SpoilageService) GetCriticalAlerts(ctx context.Context, ownerID int64, horizonDays int) (*domain.AlertReport, error) {
	if horizonDays <= 0 {
		horizonDays = s.alertHorizon
	}

	report, err := s.engine.ComputeAllRisks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.SpoilageRisk, 0)
	for _, risk := range report.Risks {
		if risk.SpoilageRisk.AtLeast(domain.RiskHigh) && risk.DaysUntilExpiry <= horizonDays {
			alerts = append(alerts, risk)
		}
	}

	return &domain.AlertReport{
		OwnerID:     ownerID,
		AsOf:        report.AsOf,
		HorizonDays: horizonDays,
		Alerts:      alerts,
		Partial:     report.Partial,
	}, nil
}

// RunPredictionJob computes predictions, exports them when object storage is
// configured and records the job as the owner's latest. Export and store
// failures are logged; the job is still returned.
func (s *SpoilageService) RunPredictionJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, error) {
	job := &domain.PredictionJob{
		ID:        s.newID(),
		OwnerID:   ownerID,
		StartedAt: s.engine.Now(),
	}

	report, err := s.engine.ComputeAllPredictions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("prediction job %s: %w", job.ID, err)
	}
	job.Report = report
	job.CompletedAt = s.engine.Now()

	logger := log.With().Str("job_id", job.ID).Int64("owner_id", ownerID).Logger()

	if s.exports != nil {
		key, err := storage.ExportPredictionJob(ctx, s.exports, job)
		if err != nil {
			logger.Warn().Err(err).Msg("spoilage: prediction export failed")
		} else {
			job.ExportKey = key
		}
	}

	if err := s.jobs.SaveJob(ctx, job); err != nil {
		logger.Warn().Err(err).Msg("spoilage: saving prediction job failed")
	}

	logger.Info().
		Int("predictions", len(report.Predictions)).
		Int("skipped", report.Skipped).
		Int("degraded", report.Degraded).
		Bool("partial", report.Partial).
		Msg("spoilage: prediction job completed")

	return job, nil
}

func (s *SpoilageService) GetLatestPredictionJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error) {
	return s.jobs.LatestJob(ctx, ownerID)
}

func (s *SpoilageService) GetPredictionJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error) {
	return s.jobs.GetJob(ctx, ownerID, jobID)
}

// ListPredictionExports returns the exported job files of an owner.
func (s *SpoilageService) ListPredictionExports(ctx context.Context, ownerID int64) ([]storage.ObjectInfo, error) {
	if s.exports == nil {
		return []storage.ObjectInfo{}, nil
	}
	return s.exports.ListObjects(ctx, storage.OwnerExportPrefix(ownerID))
}
