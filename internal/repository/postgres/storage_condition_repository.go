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

type storageConditionRepository struct {
	db *sqlx.DB
}

func NewStorageConditionRepository(db *sqlx.DB) repository.StorageConditionRepository {
	return &storageConditionRepository{db: db}
}

// LatestSample returns nil, nil when no reading exists for the pair.
func (r *storageConditionRepository) LatestSample(ctx context.Context, productID, locationID int64) (*domain.StorageConditionSample, error) {
	query := `
		SELECT product_id, location_id, temperature, humidity, light_exposure, airflow, recorded_at
		FROM storage_conditions
		WHERE product_id = $1 AND location_id = $2
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var sample domain.StorageConditionSample
	err := r.db.GetContext(ctx, &sample, query, productID, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting storage sample for product %d at location %d: %w", productID, locationID, err)
	}
	return &sample, nil
}
