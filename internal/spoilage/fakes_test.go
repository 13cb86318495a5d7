package spoilage

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/stretchr/testify/mock"
)

var (
	summerDay = time.Date(2024, time.July, 15, 9, 30, 0, 0, time.UTC)
	winterDay = time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	errLedger = errors.New("ledger offline")
)

type fakeInventory struct {
	items []domain.InventorySnapshot
	err   error
}

func (f *fakeInventory) ListInventory(ctx context.Context, ownerID int64) ([]domain.InventorySnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeLedger struct {
	totals map[int64]domain.WasteTotals
	errs   map[int64]error
	calls  atomic.Int32
	from   atomic.Value
}

func (f *fakeLedger) SumWaste(ctx context.Context, productID, ownerID int64, from, to time.Time) (domain.WasteTotals, error) {
	f.calls.Add(1)
	f.from.Store(from)
	if err := f.errs[productID]; err != nil {
		return domain.WasteTotals{}, err
	}
	return f.totals[productID], nil
}

type fakeBatchLedger struct {
	fakeLedger
	batchErr   error
	batchCalls atomic.Int32
}

func (f *fakeBatchLedger) SumWasteBatch(ctx context.Context, ownerID int64, productIDs []int64, from, to time.Time) (map[int64]domain.WasteTotals, error) {
	f.batchCalls.Add(1)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make(map[int64]domain.WasteTotals)
	for _, id := range productIDs {
		if t, ok := f.totals[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) LatestSample(ctx context.Context, productID, locationID int64) (*domain.StorageConditionSample, error) {
	args := m.Called(ctx, productID, locationID)
	sample, _ := args.Get(0).(*domain.StorageConditionSample)
	return sample, args.Error(1)
}

type captureMetrics struct {
	observed []string
	levels   []domain.RiskLevel
	issues   []domain.IssueKind
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.observed = append(c.observed, op)
}

func (c *captureMetrics) RecordAssessment(level domain.RiskLevel) {
	c.levels = append(c.levels, level)
}

func (c *captureMetrics) RecordIssue(kind domain.IssueKind) {
	c.issues = append(c.issues, kind)
}

func snapshot(id int64, category int, expires time.Time) domain.InventorySnapshot {
	exp := expires
	return domain.InventorySnapshot{
		ProductID:      id,
		ProductName:    "product",
		HasProduct:     true,
		OwnerID:        1,
		CurrentStock:   20,
		ExpirationDate: &exp,
		IsPerishable:   true,
		CategoryID:     category,
	}
}

func intPtr(v int) *int {
	return &v
}
