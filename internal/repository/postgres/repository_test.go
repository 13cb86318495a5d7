package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

var inventoryColumns = []string{
	"product_id", "product_name", "has_product", "owner_id", "location_id",
	"current_stock", "expiration_date", "is_perishable", "shelf_life_days", "category_id",
}

func TestInventoryRepository_ListInventory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)
	exp := time.Date(2024, 7, 18, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN products p ON p.id = i.product_id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(inventoryColumns).
			AddRow(int64(1), "Milk", true, int64(7), int64(2), 12.0, exp, true, int64(10), int64(2)).
			AddRow(int64(9), "", false, int64(7), int64(2), 3.0, nil, false, nil, int64(0)))

	items, err := repo.ListInventory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Milk", items[0].ProductName)
	assert.True(t, items[0].HasProduct)
	require.NotNil(t, items[0].ShelfLifeDays)
	assert.Equal(t, 10, *items[0].ShelfLifeDays)
	assert.Equal(t, exp, *items[0].ExpirationDate)

	assert.False(t, items[1].HasProduct)
	assert.Nil(t, items[1].ExpirationDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_GetInventoryItemMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.owner_id = $1 AND i.product_id = $2")).
		WithArgs(int64(7), int64(42)).
		WillReturnRows(sqlmock.NewRows(inventoryColumns))

	item, err := repo.GetInventoryItem(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestWasteRepository_SumWasteBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWasteRepository(db)
	from := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0)

	mock.ExpectQuery(regexp.QuoteMeta("product_id = ANY($2::bigint[])")).
		WithArgs(int64(7), sqlmock.AnyArg(), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "total_quantity", "entry_count"}).
			AddRow(int64(1), 4.5, int64(3)))

	totals, err := repo.SumWasteBatch(context.Background(), 7, []int64{1, 2}, from, to)
	require.NoError(t, err)
	assert.Len(t, totals, 1)
	assert.Equal(t, domain.WasteTotals{ProductID: 1, TotalQuantity: 4.5, EntryCount: 3}, totals[1])
	_, ok := totals[2]
	assert.False(t, ok)
}

func TestWasteRepository_SumWasteBatchEmptyInput(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWasteRepository(db)

	totals, err := repo.SumWasteBatch(context.Background(), 7, nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWasteRepository_SumWasteWrapsError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWasteRepository(db)

	mock.ExpectQuery("FROM waste_ledger").WillReturnError(assert.AnError)

	_, err := repo.SumWaste(context.Background(), 3, 7, time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "product 3")
}

func TestStorageConditionRepository_LatestSample(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStorageConditionRepository(db)
	at := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY recorded_at DESC")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "location_id", "temperature", "humidity", "light_exposure", "airflow", "recorded_at"}).
			AddRow(int64(1), int64(2), 4.0, 85.0, "high", "poor", at))

	sample, err := repo.LatestSample(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, domain.LightHigh, sample.LightExposure)
	assert.Equal(t, domain.AirflowPoor, sample.Airflow)
}

func TestStorageConditionRepository_NoSample(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStorageConditionRepository(db)

	mock.ExpectQuery("FROM storage_conditions").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	sample, err := repo.LatestSample(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, sample)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	wrapped := Wrap(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := wrapped.WithTx(context.Background(), func(tx *sql.Tx) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
