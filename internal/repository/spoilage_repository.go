// backend-go/internal/repository/spoilage_repository.go
package repository

import (
	"context"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

type InventoryRepository interface {
	ListInventory(ctx context.Context, ownerID int64) ([]domain.InventorySnapshot, error)
	// GetInventoryItem returns nil, nil when the owner holds no row for the product.
	GetInventoryItem(ctx context.Context, ownerID, productID int64) (*domain.InventorySnapshot, error)
}

type WasteRepository interface {
	SumWaste(ctx context.Context, productID, ownerID int64, from, to time.Time) (domain.WasteTotals, error)
	SumWasteBatch(ctx context.Context, ownerID int64, productIDs []int64, from, to time.Time) (map[int64]domain.WasteTotals, error)
}

type StorageConditionRepository interface {
	LatestSample(ctx context.Context, productID, locationID int64) (*domain.StorageConditionSample, error)
}
