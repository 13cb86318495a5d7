package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

// Kind selects the CSV layout.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindWaste     Kind = "waste"
	KindStorage   Kind = "storage"
)

var requiredColumns = map[Kind][]string{
	KindInventory: {"owner_id", "product_id", "location_id", "current_stock"},
	KindWaste:     {"owner_id", "product_id", "quantity", "waste_date"},
	KindStorage:   {"product_id", "location_id", "temperature", "humidity", "light_exposure", "airflow", "recorded_at"},
}

// RowError points at a rejected data row by its 1-based file line.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// InventoryRow is one inventory line. Product is nil when the row carries no
// product_name, in which case only the inventory row is written.
type InventoryRow struct {
	Product  *domain.Product
	Snapshot domain.InventorySnapshot
}

type row struct {
	line   int
	values []string
	cols   map[string]int
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r row) integer(name string) (int64, error) {
	v, err := strconv.ParseInt(r.get(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer", name)
	}
	return v, nil
}

func (r row) number(name string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not a number", name)
	}
	return v, nil
}

func (r row) nonNegative(name string) (float64, error) {
	v, err := r.number(name)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: must be non-negative", name)
	}
	return v, nil
}

func (r row) optionalInt(name string) (*int, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: not an integer", name)
	}
	return &v, nil
}

func (r row) flag(name string) (bool, error) {
	raw := r.get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: not a boolean", name)
	}
	return v, nil
}

func (r row) timestamp(name string) (*time.Time, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

func (r row) requiredTimestamp(name string) (time.Time, error) {
	t, err := r.timestamp(name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%s: required", name)
	}
	return *t, nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// parseTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" and "YYYY-MM-DD"; zone-less values are UTC.
func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", raw)
}

// readRows validates the header and yields each data row.
func readRows(r io.Reader, kind Kind, fn func(row) error) error {
	required, ok := requiredColumns[kind]
	if !ok {
		return fmt.Errorf("unknown seed kind %q", kind)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s CSV missing columns: %s", kind, strings.Join(missing, ", "))
	}

	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(values) {
			continue
		}
		if err := fn(row{line: line, values: values, cols: cols}); err != nil {
			return err
		}
	}
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseInventory reads an inventory CSV. Invalid rows are returned as RowErrors.
func ParseInventory(r io.Reader) ([]InventoryRow, []RowError, error) {
	var (
		rows    []InventoryRow
		rejects []RowError
	)
	err := readRows(r, KindInventory, func(rw row) error {
		item, err := parseInventoryRow(rw)
		if err != nil {
			rejects = append(rejects, RowError{Line: rw.line, Err: err.Error()})
			return nil
		}
		rows = append(rows, item)
		return nil
	})
	return rows, rejects, err
}

func parseInventoryRow(rw row) (InventoryRow, error) {
	var out InventoryRow
	var err error

	s := &out.Snapshot
	if s.OwnerID, err = rw.integer("owner_id"); err != nil {
		return out, err
	}
	if s.ProductID, err = rw.integer("product_id"); err != nil {
		return out, err
	}
	if s.LocationID, err = rw.integer("location_id"); err != nil {
		return out, err
	}
	if s.CurrentStock, err = rw.nonNegative("current_stock"); err != nil {
		return out, err
	}
	if s.ExpirationDate, err = rw.timestamp("expiration_date"); err != nil {
		return out, err
	}

	name := rw.get("product_name")
	if name == "" {
		return out, nil
	}

	p := &domain.Product{ID: s.ProductID, Name: name}
	if p.IsPerishable, err = rw.flag("is_perishable"); err != nil {
		return out, err
	}
	if p.ShelfLifeDays, err = rw.optionalInt("shelf_life_days"); err != nil {
		return out, err
	}
	if p.ShelfLifeDays != nil && *p.ShelfLifeDays <= 0 {
		return out, errors.New("shelf_life_days: must be positive")
	}
	if raw := rw.get("category_id"); raw != "" {
		if p.CategoryID, err = strconv.Atoi(raw); err != nil || p.CategoryID < 0 {
			return out, errors.New("category_id: not a valid category")
		}
	}

	out.Product = p
	s.ProductName = p.Name
	s.HasProduct = true
	s.IsPerishable = p.IsPerishable
	s.ShelfLifeDays = p.ShelfLifeDays
	s.CategoryID = p.CategoryID
	return out, nil
}

// ParseWaste reads a waste ledger CSV.
func ParseWaste(r io.Reader) ([]domain.WasteLedgerEntry, []RowError, error) {
	var (
		entries []domain.WasteLedgerEntry
		rejects []RowError
	)
	err := readRows(r, KindWaste, func(rw row) error {
		e, err := parseWasteRow(rw)
		if err != nil {
			rejects = append(rejects, RowError{Line: rw.line, Err: err.Error()})
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	return entries, rejects, err
}

func parseWasteRow(rw row) (domain.WasteLedgerEntry, error) {
	var e domain.WasteLedgerEntry
	var err error

	if e.OwnerID, err = rw.integer("owner_id"); err != nil {
		return e, err
	}
	if e.ProductID, err = rw.integer("product_id"); err != nil {
		return e, err
	}
	if e.Quantity, err = rw.nonNegative("quantity"); err != nil {
		return e, err
	}
	if e.WasteDate, err = rw.requiredTimestamp("waste_date"); err != nil {
		return e, err
	}
	return e, nil
}

// ParseStorage reads a storage-condition sample CSV.
func ParseStorage(r io.Reader) ([]domain.StorageConditionSample, []RowError, error) {
	var (
		samples []domain.StorageConditionSample
		rejects []RowError
	)
	err := readRows(r, KindStorage, func(rw row) error {
		s, err := parseStorageRow(rw)
		if err != nil {
			rejects = append(rejects, RowError{Line: rw.line, Err: err.Error()})
			return nil
		}
		samples = append(samples, s)
		return nil
	})
	return samples, rejects, err
}

func parseStorageRow(rw row) (domain.StorageConditionSample, error) {
	var s domain.StorageConditionSample
	var err error

	if s.ProductID, err = rw.integer("product_id"); err != nil {
		return s, err
	}
	if s.LocationID, err = rw.integer("location_id"); err != nil {
		return s, err
	}
	if s.Temperature, err = rw.number("temperature"); err != nil {
		return s, err
	}
	if s.Humidity, err = rw.number("humidity"); err != nil {
		return s, err
	}
	if s.Humidity < 0 || s.Humidity > 100 {
		return s, errors.New("humidity: must be within 0-100")
	}

	light, ok := domain.ParseLightExposure(rw.get("light_exposure"))
	if !ok {
		return s, fmt.Errorf("light_exposure: unknown value %q", rw.get("light_exposure"))
	}
	s.LightExposure = light

	airflow, ok := domain.ParseAirflow(rw.get("airflow"))
	if !ok {
		return s, fmt.Errorf("airflow: unknown value %q", rw.get("airflow"))
	}
	s.Airflow = airflow

	if s.RecordedAt, err = rw.requiredTimestamp("recorded_at"); err != nil {
		return s, err
	}
	return s, nil
}
