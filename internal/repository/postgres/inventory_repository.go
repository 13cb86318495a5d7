package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

// inventorySelect LEFT JOINs products so rows with a dangling product_id are
// still returned with has_product = false.
const inventorySelect = `
	SELECT
		i.product_id,
		COALESCE(p.name, '') AS product_name,
		(p.id IS NOT NULL) AS has_product,
		i.owner_id,
		i.location_id,
		i.current_stock,
		i.expiration_date,
		COALESCE(p.is_perishable, false) AS is_perishable,
		p.shelf_life_days,
		COALESCE(p.category_id, 0) AS category_id
	FROM inventory i
	LEFT JOIN products p ON p.id = i.product_id
`

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListInventory(ctx context.Context, ownerID int64) ([]domain.InventorySnapshot, error) {
	query := inventorySelect + `
	WHERE i.owner_id = $1
	ORDER BY i.product_id, i.location_id
	`

	items := make([]domain.InventorySnapshot, 0)
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("error listing inventory for owner %d: %w", ownerID, err)
	}
	return items, nil
}

func (r *inventoryRepository) GetInventoryItem(ctx context.Context, ownerID, productID int64) (*domain.InventorySnapshot, error) {
	query := inventorySelect + `
	WHERE i.owner_id = $1 AND i.product_id = $2
	ORDER BY i.expiration_date NULLS LAST, i.location_id
	LIMIT 1
	`

	var item domain.InventorySnapshot
	err := r.db.GetContext(ctx, &item, query, ownerID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting inventory item %d for owner %d: %w", productID, ownerID, err)
	}
	return &item, nil
}
