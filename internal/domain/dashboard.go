package domain

import "time"

// IssueKind classifies why a product was skipped or degraded in a batch run.
type IssueKind string

const (
	IssueMissingProduct     IssueKind = "missing_product"
	IssueInsufficientData   IssueKind = "insufficient_data"
	IssueWasteUnavailable   IssueKind = "waste_history_unavailable"
	IssueNotProcessed       IssueKind = "not_processed"
	IssueStorageUnavailable IssueKind = "storage_conditions_unavailable"
)

// ItemIssue describes a product the batch could not fully assess.
type ItemIssue struct {
	ProductID   int64     `json:"product_id"`
	LocationID  int64     `json:"location_id"`
	ProductName string    `json:"product_name,omitempty"`
	Kind        IssueKind `json:"kind"`
	Message     string    `json:"message"`
}

// Degrades reports whether the issue counts as degraded rather than skipped.
// Storage failures degrade an item that is still scored.
func (i ItemIssue) Degrades() bool {
	return i.Kind == IssueInsufficientData || i.Kind == IssueStorageUnavailable
}

// RiskReport is the batch result for an owner, sorted by descending risk score.
type RiskReport struct {
	OwnerID  int64          `json:"owner_id"`
	AsOf     time.Time      `json:"as_of"`
	Risks    []SpoilageRisk `json:"risks"`
	Issues   []ItemIssue    `json:"issues"`
	Skipped  int            `json:"skipped"`
	Degraded int            `json:"degraded"`

	// Partial is set when the run hit its deadline before every item was processed.
	Partial bool `json:"partial"`
}

// PredictionReport is the advanced-predictions view derived 1:1 from a RiskReport.
type PredictionReport struct {
	OwnerID     int64                `json:"owner_id"`
	AsOf        time.Time            `json:"as_of"`
	Predictions []SpoilagePrediction `json:"predictions"`
	Issues      []ItemIssue          `json:"issues"`
	Skipped     int                  `json:"skipped"`
	Degraded    int                  `json:"degraded"`
	Partial     bool                 `json:"partial"`
}

// PredictionJob is a stored run of the batch predictions job.
type PredictionJob struct {
	ID          string            `json:"id"`
	OwnerID     int64             `json:"owner_id"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	ExportKey   string            `json:"export_key,omitempty"`
	Report      *PredictionReport `json:"report"`
}

// AlertReport is the critical-alerts feed: high or critical items expiring
// within HorizonDays, highest risk first.
type AlertReport struct {
	OwnerID     int64          `json:"owner_id"`
	AsOf        time.Time      `json:"as_of"`
	HorizonDays int            `json:"horizon_days"`
	Alerts      []SpoilageRisk `json:"alerts"`
	Partial     bool           `json:"partial"`
}
