package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

// Execer is satisfied by *sql.DB, *sql.Tx and their sqlx wrappers.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// IngestRepository writes seed and feed data. Bind it to a transaction to load
// a file atomically.
type IngestRepository struct {
	db Execer
}

func NewIngestRepository(db Execer) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, category_id, is_perishable, shelf_life_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			is_perishable = EXCLUDED.is_perishable,
			shelf_life_days = EXCLUDED.shelf_life_days,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.IsPerishable,
		product.ShelfLifeDays,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", product.ID, err)
	}
	return nil
}

func (r *IngestRepository) UpsertInventory(ctx context.Context, item *domain.InventorySnapshot) error {
	query := `
		INSERT INTO inventory (owner_id, product_id, location_id, current_stock, expiration_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (owner_id, product_id, location_id)
		DO UPDATE SET
			current_stock = EXCLUDED.current_stock,
			expiration_date = EXCLUDED.expiration_date,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		item.OwnerID,
		item.ProductID,
		item.LocationID,
		item.CurrentStock,
		item.ExpirationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory for product %d: %w", item.ProductID, err)
	}
	return nil
}

func (r *IngestRepository) InsertWaste(ctx context.Context, entry *domain.WasteLedgerEntry) error {
	query := `
		INSERT INTO waste_ledger (owner_id, product_id, quantity, waste_date)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, entry.OwnerID, entry.ProductID, entry.Quantity, entry.WasteDate); err != nil {
		return fmt.Errorf("failed to insert waste entry for product %d: %w", entry.ProductID, err)
	}
	return nil
}

func (r *IngestRepository) InsertStorageSample(ctx context.Context, sample *domain.StorageConditionSample) error {
	query := `
		INSERT INTO storage_conditions (product_id, location_id, temperature, humidity, light_exposure, airflow, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		sample.ProductID,
		sample.LocationID,
		sample.Temperature,
		sample.Humidity,
		string(sample.LightExposure),
		string(sample.Airflow),
		sample.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert storage sample for product %d: %w", sample.ProductID, err)
	}
	return nil
}
