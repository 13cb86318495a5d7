package spoilage

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// NoHistoryWasteRate is returned when the window holds no ledger entries.
	NoHistoryWasteRate = 0.1

	DefaultWasteWindowMonths = 3
	DefaultWasteConcurrency  = 8

	wasteNormalizer = 100.0
)

// WasteAnalyzer computes trailing-window waste rates from the waste ledger.
type WasteAnalyzer struct {
	ledger       WasteLedger
	windowMonths int
	concurrency  int
}

// NewWasteAnalyzer creates an analyzer. Non-positive windowMonths or
// concurrency fall back to the defaults.
func NewWasteAnalyzer(ledger WasteLedger, windowMonths, concurrency int) *WasteAnalyzer {
	if windowMonths <= 0 {
		windowMonths = DefaultWasteWindowMonths
	}
	if concurrency <= 0 {
		concurrency = DefaultWasteConcurrency
	}
	return &WasteAnalyzer{
		ledger:       ledger,
		windowMonths: windowMonths,
		concurrency:  concurrency,
	}
}

// Window returns the [from, to] range ending at asOf.
func (a *WasteAnalyzer) Window(asOf time.Time) (time.Time, time.Time) {
	return asOf.AddDate(0, -a.windowMonths, 0), asOf
}

// WasteRate returns the waste rate of one product as of a date.
func (a *WasteAnalyzer) WasteRate(ctx context.Context, productID, ownerID int64, asOf time.Time) (float64, error) {
	from, to := a.Window(asOf)
	totals, err := a.ledger.SumWaste(ctx, productID, ownerID, from, to)
	if err != nil {
		return 0, fmt.Errorf("sum waste for product %d: %w", productID, err)
	}
	return RateFromTotals(totals), nil
}

// WasteRates returns rates for a set of products. Per-product failures are
// reported in the error map; the returned error is only set when ctx ends.
func (a *WasteAnalyzer) WasteRates(ctx context.Context, ownerID int64, productIDs []int64, asOf time.Time) (map[int64]float64, map[int64]error, error) {
	rates := make(map[int64]float64, len(productIDs))
	failures := make(map[int64]error)
	if len(productIDs) == 0 {
		return rates, failures, nil
	}

	if batch, ok := a.ledger.(BatchWasteLedger); ok {
		from, to := a.Window(asOf)
		totals, err := batch.SumWasteBatch(ctx, ownerID, productIDs, from, to)
		if err == nil {
			for _, id := range productIDs {
				rates[id] = RateFromTotals(totals[id])
			}
			return rates, failures, nil
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.Warn().Err(err).Int64("owner_id", ownerID).Int("products", len(productIDs)).
			Msg("spoilage: batched waste query failed, falling back to per-product reads")
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, id := range productIDs {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rate, err := a.WasteRate(gctx, id, ownerID, asOf)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[id] = err
				return nil
			}
			rates[id] = rate
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rates, failures, err
	}
	return rates, failures, nil
}

// RateFromTotals applies the ledger heuristic: total / (entries × 100), clamped
// to [0,1], with NoHistoryWasteRate when there are no entries.
func RateFromTotals(t domain.WasteTotals) float64 {
	if t.EntryCount <= 0 {
		return NoHistoryWasteRate
	}
	rate := t.TotalQuantity / (float64(t.EntryCount) * wasteNormalizer)
	if math.IsNaN(rate) {
		return 0
	}
	return clamp01(rate)
}
