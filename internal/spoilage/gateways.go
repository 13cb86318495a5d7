package spoilage

import (
	"context"
	"errors"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

var (
	// ErrInventoryUnavailable wraps failures reading the owner's inventory.
	ErrInventoryUnavailable = errors.New("inventory unavailable")
	// ErrProductNotFound is returned when a product has no inventory row for an owner.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientData is returned for products without an expiration date.
	ErrInsufficientData = errors.New("insufficient data: missing expiration date")
)

// InventoryGateway lists the inventory snapshots for an owner.
type InventoryGateway interface {
	ListInventory(ctx context.Context, ownerID int64) ([]domain.InventorySnapshot, error)
}

// WasteLedger aggregates waste entries for one product in [from, to].
type WasteLedger interface {
	SumWaste(ctx context.Context, productID, ownerID int64, from, to time.Time) (domain.WasteTotals, error)
}

// BatchWasteLedger aggregates waste for a product set in a single query.
// Products without entries may be absent from the result.
type BatchWasteLedger interface {
	SumWasteBatch(ctx context.Context, ownerID int64, productIDs []int64, from, to time.Time) (map[int64]domain.WasteTotals, error)
}

// StorageConditionGateway returns the latest storage sample, or nil when none exists.
type StorageConditionGateway interface {
	LatestSample(ctx context.Context, productID, locationID int64) (*domain.StorageConditionSample, error)
}
