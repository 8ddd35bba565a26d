package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaterialNameMaxLen        = 200
	MaterialDescriptionMaxLen = 1000
	MaterialSKUMaxLen         = 50
	UnitPriceScale            = 2
)

// maxUnitPrice is the largest value NUMERIC(18,2) can hold.
var maxUnitPrice = decimal.New(1, 16)

type Material struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	SKU             string          `json:"sku"`
	CategoryID      int64           `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	Quantity        int             `json:"quantity"`
	MinimumQuantity int             `json:"minimum_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int64           `json:"version"`
}

// IsLowStock reports whether the on-hand quantity is at or below the threshold.
func (m Material) IsLowStock() bool {
	return m.Quantity <= m.MinimumQuantity
}

// StockValue is quantity times unit price.
func (m Material) StockValue() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

func (m Material) MarshalJSON() ([]byte, error) {
	type plain Material
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		LowStock  bool   `json:"low_stock"`
	}{
		plain:     plain(m),
		UnitPrice: m.UnitPrice.StringFixed(UnitPriceScale),
		LowStock:  m.IsLowStock(),
	})
}

// Normalize trims text fields and upper-cases the SKU.
func (m *Material) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	m.SKU = strings.ToUpper(strings.TrimSpace(m.SKU))
}

// Validate checks the field constraints of a material. Whether the category
// exists is decided by the gateway, not here.
func (m *Material) Validate() ValidationErrors {
	var errs ValidationErrors
	errs.required("name", m.Name, MaterialNameMaxLen)
	errs.maxLen("description", m.Description, MaterialDescriptionMaxLen)
	errs.required("sku", m.SKU, MaterialSKUMaxLen)
	if m.CategoryID <= 0 {
		errs.add("category_id", "is required")
	}
	errs.intRange("quantity", m.Quantity)
	errs.intRange("minimum_quantity", m.MinimumQuantity)
	switch {
	case m.UnitPrice.IsNegative():
		errs.add("unit_price", "cannot be negative")
	case !m.UnitPrice.Equal(m.UnitPrice.Round(UnitPriceScale)):
		errs.add("unit_price", "must have at most 2 decimal places")
	case m.UnitPrice.GreaterThanOrEqual(maxUnitPrice):
		errs.add("unit_price", "is too large")
	}
	return errs
}

// MaterialFilter narrows the material list. Zero values disable a criterion.
type MaterialFilter struct {
	Search     string
	CategoryID int64
}

// Matches applies the filter to a single material: case-insensitive substring
// on name or SKU, exact category match.
func (f MaterialFilter) Matches(m Material) bool {
	if f.CategoryID > 0 && m.CategoryID != f.CategoryID {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.SKU), q)
}

// InventoryStats aggregates the material table for the dashboard.
type InventoryStats struct {
	TotalCategories int64           `json:"total_categories"`
	TotalMaterials  int64           `json:"total_materials"`
	LowStockCount   int64           `json:"low_stock_count"`
	TotalQuantity   int64           `json:"total_quantity"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
}

func (s InventoryStats) MarshalJSON() ([]byte, error) {
	type plain InventoryStats
	return json.Marshal(struct {
		plain
		InventoryValue string `json:"inventory_value"`
	}{
		plain:          plain(s),
		InventoryValue: s.InventoryValue.StringFixed(UnitPriceScale),
	})
}

// MaterialRepository is the gateway to the materials table. UpdateMaterial
// treats m.Version as the version the caller last read.
type MaterialRepository interface {
	CreateMaterial(ctx context.Context, m *Material) (*Material, error)
	GetMaterialByID(ctx context.Context, id int64) (*Material, error)
	UpdateMaterial(ctx context.Context, m *Material) (*Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	ListMaterials(ctx context.Context, filter MaterialFilter) ([]Material, error)
	CountMaterials(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*InventoryStats, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]Material, error)
}
