package spoilage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	opComputeRisks       = "compute_all_risks"
	opComputePredictions = "compute_all_predictions"
	opAssess             = "assess_product"
)

// Config tunes the engine. Zero values select the defaults.
type Config struct {
	WasteWindowMonths  int
	WasteConcurrency   int
	NeutralStorageRisk float64
	BatchTimeout       time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WasteWindowMonths:  DefaultWasteWindowMonths,
		WasteConcurrency:   DefaultWasteConcurrency,
		NeutralStorageRisk: DefaultNeutralStorageRisk,
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithWeights replaces the default weighting. Invalid weights are rejected by NewEngine.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// Engine scores spoilage risk per product and across an owner's inventory.
type Engine struct {
	inventory  InventoryGateway
	storage    StorageConditionGateway
	waste      *WasteAnalyzer
	calculator *FactorCalculator
	weights    Weights
	clock      Clock
	metrics    MetricsRecorder
	timeout    time.Duration
}

// NewEngine wires the engine to its gateways. storage may be nil when no
// sensor integration exists.
func NewEngine(inventory InventoryGateway, ledger WasteLedger, storage StorageConditionGateway, cfg Config, opts ...Option) (*Engine, error) {
	if inventory == nil {
		return nil, errors.New("spoilage: inventory gateway is required")
	}
	if ledger == nil {
		return nil, errors.New("spoilage: waste ledger is required")
	}

	e := &Engine{
		inventory:  inventory,
		storage:    storage,
		waste:      NewWasteAnalyzer(ledger, cfg.WasteWindowMonths, cfg.WasteConcurrency),
		calculator: NewFactorCalculator(cfg.NeutralStorageRisk),
		weights:    DefaultWeights,
		clock:      SystemClock{},
		metrics:    noopMetrics{},
		timeout:    cfg.BatchTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, fmt.Errorf("spoilage: %w", err)
	}
	return e, nil
}

// Now returns the engine's as-of instant.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// ComputeAllRisks assesses every inventory item of an owner and returns them
// sorted by descending risk score. Items that cannot be assessed are reported
// as issues. A cancelled context returns no results; an expired deadline
// returns what was computed with Partial set.
func (e *Engine) ComputeAllRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error) {
	start := time.Now()
	report, err := e.computeAllRisks(ctx, ownerID)
	e.metrics.Observe(ctx, opComputeRisks, err == nil, time.Since(start))
	return report, err
}

func (e *Engine) computeAllRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	asOf := e.clock.Now()
	snapshots, err := e.inventory.ListInventory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list inventory for owner %d: %w: %w", ownerID, ErrInventoryUnavailable, err)
	}

	report := &domain.RiskReport{
		OwnerID: ownerID,
		AsOf:    asOf,
		Risks:   make([]domain.SpoilageRisk, 0, len(snapshots)),
		Issues:  make([]domain.ItemIssue, 0),
	}

	candidates := make([]domain.InventorySnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		switch {
		case !s.HasProduct:
			e.addIssue(report, ownerID, s, domain.IssueMissingProduct, "inventory row has no matching product")
		case s.ExpirationDate == nil:
			e.addIssue(report, ownerID, s, domain.IssueInsufficientData, ErrInsufficientData.Error())
		default:
			candidates = append(candidates, s)
		}
	}

	// Waste is tracked per product, so a product stocked at several
	// locations is looked up once.
	ids := make([]int64, 0, len(candidates))
	seen := make(map[int64]struct{}, len(candidates))
	for _, s := range candidates {
		if _, ok := seen[s.ProductID]; ok {
			continue
		}
		seen[s.ProductID] = struct{}{}
		ids = append(ids, s.ProductID)
	}
	rates, failures, err := e.waste.WasteRates(ctx, ownerID, ids, asOf)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	}

	for i, s := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.Canceled) {
				return nil, ctxErr
			}
			report.Partial = true
			for _, rest := range candidates[i:] {
				e.addIssue(report, ownerID, rest, domain.IssueNotProcessed, "deadline exceeded before processing")
			}
			break
		}

		if werr, failed := failures[s.ProductID]; failed {
			e.addIssue(report, ownerID, s, domain.IssueWasteUnavailable, werr.Error())
			continue
		}
		rate, ok := rates[s.ProductID]
		if !ok {
			e.addIssue(report, ownerID, s, domain.IssueWasteUnavailable, "waste rate was not computed")
			continue
		}

		sample, serr := e.latestSample(ctx, s)
		if serr != nil {
			e.addIssue(report, ownerID, s, domain.IssueStorageUnavailable, serr.Error())
		}
		risk := e.assess(s, rate, sample, asOf)
		e.metrics.RecordAssessment(risk.SpoilageRisk)
		report.Risks = append(report.Risks, risk)
	}

	SortRisks(report.Risks)
	return report, nil
}

// ComputeAllPredictions derives the advanced-predictions view from ComputeAllRisks.
func (e *Engine) ComputeAllPredictions(ctx context.Context, ownerID int64) (*domain.PredictionReport, error) {
	start := time.Now()
	risks, err := e.computeAllRisks(ctx, ownerID)
	e.metrics.Observe(ctx, opComputePredictions, err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	return PredictionsFromRisks(risks), nil
}

// Assess scores a single snapshot.
func (e *Engine) Assess(ctx context.Context, ownerID int64, snapshot domain.InventorySnapshot) (*domain.SpoilageRisk, error) {
	start := time.Now()
	risk, err := e.assessOne(ctx, ownerID, snapshot)
	e.metrics.Observe(ctx, opAssess, err == nil, time.Since(start))
	return risk, err
}

func (e *Engine) assessOne(ctx context.Context, ownerID int64, snapshot domain.InventorySnapshot) (*domain.SpoilageRisk, error) {
	if !snapshot.HasProduct {
		return nil, fmt.Errorf("product %d: %w", snapshot.ProductID, ErrProductNotFound)
	}
	if snapshot.ExpirationDate == nil {
		return nil, fmt.Errorf("product %d: %w", snapshot.ProductID, ErrInsufficientData)
	}

	asOf := e.clock.Now()
	rate, err := e.waste.WasteRate(ctx, snapshot.ProductID, ownerID, asOf)
	if err != nil {
		return nil, err
	}

	sample, err := e.latestSample(ctx, snapshot)
	if err != nil {
		log.Warn().Err(err).
			Int64("product_id", snapshot.ProductID).
			Int64("location_id", snapshot.LocationID).
			Msg("spoilage: storage sample unavailable, using neutral storage risk")
	}
	risk := e.assess(snapshot, rate, sample, asOf)
	e.metrics.RecordAssessment(risk.SpoilageRisk)
	return &risk, nil
}

func (e *Engine) assess(s domain.InventorySnapshot, wasteRate float64, sample *domain.StorageConditionSample, asOf time.Time) domain.SpoilageRisk {
	factors, known := e.calculator.Compute(s, wasteRate, SeasonalFactorsFor(asOf), sample)
	score := e.weights.Score(factors)
	level := Categorize(score)
	days := DaysUntilExpiry(asOf, *s.ExpirationDate)

	return domain.SpoilageRisk{
		ProductID:              s.ProductID,
		LocationID:             s.LocationID,
		ProductName:            s.ProductName,
		CurrentStock:           s.CurrentStock,
		DaysUntilExpiry:        days,
		SpoilageRisk:           level,
		RiskScore:              score,
		PredictedSpoilageDate:  PredictSpoilageDate(*s.ExpirationDate, score, s.ShelfLifeDays),
		RecommendedAction:      RecommendAction(level, days, s.CurrentStock),
		Factors:                factors,
		StorageConditionsKnown: known,
	}
}

// latestSample returns nil, nil when there is no gateway or no sample. A
// gateway error leaves the item on the neutral storage risk.
func (e *Engine) latestSample(ctx context.Context, s domain.InventorySnapshot) (*domain.StorageConditionSample, error) {
	if e.storage == nil {
		return nil, nil
	}
	sample, err := e.storage.LatestSample(ctx, s.ProductID, s.LocationID)
	if err != nil {
		return nil, fmt.Errorf("storage sample for product %d at location %d: %w", s.ProductID, s.LocationID, err)
	}
	return sample, nil
}

func (e *Engine) addIssue(report *domain.RiskReport, ownerID int64, s domain.InventorySnapshot, kind domain.IssueKind, msg string) {
	issue := domain.ItemIssue{
		ProductID:   s.ProductID,
		LocationID:  s.LocationID,
		ProductName: s.ProductName,
		Kind:        kind,
		Message:     msg,
	}
	report.Issues = append(report.Issues, issue)
	if issue.Degrades() {
		report.Degraded++
	} else {
		report.Skipped++
	}
	e.metrics.RecordIssue(kind)

	log.Warn().
		Int64("owner_id", ownerID).
		Int64("product_id", s.ProductID).
		Int64("location_id", s.LocationID).
		Str("kind", string(kind)).
		Msg("spoilage: " + msg)
}

// SortRisks orders risks by descending score, then ascending product and
// location ID.
func SortRisks(risks []domain.SpoilageRisk) {
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].RiskScore != risks[j].RiskScore {
			return risks[i].RiskScore > risks[j].RiskScore
		}
		if risks[i].ProductID != risks[j].ProductID {
			return risks[i].ProductID < risks[j].ProductID
		}
		return risks[i].LocationID < risks[j].LocationID
	})
}

// PredictionsFromRisks maps each risk 1:1 to a prediction, keeping the order.
func PredictionsFromRisks(r *domain.RiskReport) *domain.PredictionReport {
	out := &domain.PredictionReport{
		OwnerID:     r.OwnerID,
		AsOf:        r.AsOf,
		Predictions: make([]domain.SpoilagePrediction, 0, len(r.Risks)),
		Issues:      r.Issues,
		Skipped:     r.Skipped,
		Degraded:    r.Degraded,
		Partial:     r.Partial,
	}
	for _, risk := range r.Risks {
		out.Predictions = append(out.Predictions, domain.SpoilagePrediction{
			ProductID:             risk.ProductID,
			LocationID:            risk.LocationID,
			PredictedSpoilageDate: risk.PredictedSpoilageDate,
			Confidence:            risk.RiskScore,
			RiskFactors:           IdentifyFactors(risk.Factors),
			Recommendations:       SuggestImprovements(risk),
		})
	}
	return out
}
