package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type wasteRepository struct {
	db *sqlx.DB
}

func NewWasteRepository(db *sqlx.DB) repository.WasteRepository {
	return &wasteRepository{db: db}
}

// SumWaste aggregates ledger entries with waste_date in [from, to].
func (r *wasteRepository) SumWaste(ctx context.Context, productID, ownerID int64, from, to time.Time) (domain.WasteTotals, error) {
	query := `
		SELECT
			$1::bigint AS product_id,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COUNT(*) AS entry_count
		FROM waste_ledger
		WHERE product_id = $1
		  AND owner_id = $2
		  AND waste_date BETWEEN $3 AND $4
	`

	var totals domain.WasteTotals
	if err := r.db.GetContext(ctx, &totals, query, productID, ownerID, from, to); err != nil {
		return domain.WasteTotals{}, fmt.Errorf("error summing waste for product %d: %w", productID, err)
	}
	return totals, nil
}

// SumWasteBatch returns one row per product that has entries in the window.
func (r *wasteRepository) SumWasteBatch(ctx context.Context, ownerID int64, productIDs []int64, from, to time.Time) (map[int64]domain.WasteTotals, error) {
	out := make(map[int64]domain.WasteTotals, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT
			product_id,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COUNT(*) AS entry_count
		FROM waste_ledger
		WHERE owner_id = $1
		  AND product_id = ANY($2::bigint[])
		  AND waste_date BETWEEN $3 AND $4
		GROUP BY product_id
	`

	var rows []domain.WasteTotals
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, pq.Array(productIDs), from, to); err != nil {
		return nil, fmt.Errorf("error summing waste batch for owner %d: %w", ownerID, err)
	}
	for _, row := range rows {
		out[row.ProductID] = row
	}
	return out, nil
}
