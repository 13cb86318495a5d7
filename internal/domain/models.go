// backend-go/internal/domain/models.go
package domain

import "time"

// InventorySnapshot is the read-only view of one inventory row for an owner.
type InventorySnapshot struct {
	ProductID      int64      `json:"product_id" db:"product_id"`
	ProductName    string     `json:"product_name" db:"product_name"`
	HasProduct     bool       `json:"-" db:"has_product"` // false when the product join is missing
	OwnerID        int64      `json:"owner_id" db:"owner_id"`
	LocationID     int64      `json:"location_id" db:"location_id"`
	CurrentStock   float64    `json:"current_stock" db:"current_stock"`
	ExpirationDate *time.Time `json:"expiration_date" db:"expiration_date"`
	IsPerishable   bool       `json:"is_perishable" db:"is_perishable"`
	ShelfLifeDays  *int       `json:"shelf_life_days" db:"shelf_life_days"`
	CategoryID     int        `json:"category_id" db:"category_id"`
}

// WasteLedgerEntry records a quantity of product discarded on a given day.
type WasteLedgerEntry struct {
	ProductID int64     `json:"product_id" db:"product_id"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	WasteDate time.Time `json:"waste_date" db:"waste_date"`
}

// WasteTotals is the aggregate of ledger entries inside a window.
type WasteTotals struct {
	ProductID     int64   `json:"product_id" db:"product_id"`
	TotalQuantity float64 `json:"total_quantity" db:"total_quantity"`
	EntryCount    int     `json:"entry_count" db:"entry_count"`
}

// StorageConditionSample is the latest sensor reading for a product at a location.
type StorageConditionSample struct {
	ProductID     int64         `json:"product_id" db:"product_id"`
	LocationID    int64         `json:"location_id" db:"location_id"`
	Temperature   float64       `json:"temperature" db:"temperature"` // Celsius
	Humidity      float64       `json:"humidity" db:"humidity"`       // %RH
	LightExposure LightExposure `json:"light_exposure" db:"light_exposure"`
	Airflow       Airflow       `json:"airflow" db:"airflow"`
	RecordedAt    time.Time     `json:"recorded_at" db:"recorded_at"`
}

// RiskFactors holds the five sub-scores feeding the risk score.
type RiskFactors struct {
	Temperature       float64 `json:"temperature"`
	Humidity          float64 `json:"humidity"`
	Seasonality       float64 `json:"seasonality"`
	HistoricalWaste   float64 `json:"historical_waste"`
	StorageConditions float64 `json:"storage_conditions"`
}

// SpoilageRisk is the risk assessment of one product at one location.
type SpoilageRisk struct {
	ProductID             int64       `json:"product_id"`
	LocationID            int64       `json:"location_id"`
	ProductName           string      `json:"product_name"`
	CurrentStock          float64     `json:"current_stock"`
	DaysUntilExpiry       int         `json:"days_until_expiry"`
	SpoilageRisk          RiskLevel   `json:"spoilage_risk"`
	RiskScore             float64     `json:"risk_score"`
	PredictedSpoilageDate time.Time   `json:"predicted_spoilage_date"`
	RecommendedAction     string      `json:"recommended_action"`
	Factors               RiskFactors `json:"factors"`

	// StorageConditionsKnown is false when no storage sample was available and
	// Factors.StorageConditions holds the neutral default.
	StorageConditionsKnown bool `json:"storage_conditions_known"`
}

// SpoilagePrediction is the narrative view of a SpoilageRisk.
type SpoilagePrediction struct {
	ProductID             int64     `json:"product_id"`
	LocationID            int64     `json:"location_id"`
	PredictedSpoilageDate time.Time `json:"predicted_spoilage_date"`
	Confidence            float64   `json:"confidence"`
	RiskFactors           []string  `json:"risk_factors"`
	Recommendations       []string  `json:"recommendations"`
}

// Product is the catalog row joined into inventory snapshots.
type Product struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	CategoryID    int    `json:"category_id" db:"category_id"`
	IsPerishable  bool   `json:"is_perishable" db:"is_perishable"`
	ShelfLifeDays *int   `json:"shelf_life_days" db:"shelf_life_days"`
}
