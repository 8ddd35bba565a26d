package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMaterial() Material {
	return Material{
		Name:            "Arduino Uno R3",
		SKU:             "ARD-UNO-R3",
		CategoryID:      1,
		Quantity:        50,
		MinimumQuantity: 10,
		UnitPrice:       decimal.RequireFromString("23.00"),
	}
}

func TestMaterialLowStock(t *testing.T) {
	cases := []struct {
		qty, min int
		want     bool
	}{
		{qty: 5, min: 8, want: true},
		{qty: 50, min: 10, want: false},
		{qty: 8, min: 8, want: true},
		{qty: 0, min: 0, want: true},
	}
	for _, tc := range cases {
		m := Material{Quantity: tc.qty, MinimumQuantity: tc.min}
		assert.Equal(t, tc.want, m.IsLowStock(), "quantity=%d minimum=%d", tc.qty, tc.min)
	}
}

func TestMaterialValidateAcceptsValidRecord(t *testing.T) {
	m := validMaterial()
	assert.Empty(t, m.Validate())
}

func TestMaterialValidateReportsEveryViolation(t *testing.T) {
	m := Material{
		Name:            "",
		SKU:             strings.Repeat("X", MaterialSKUMaxLen+1),
		Quantity:        -1,
		MinimumQuantity: -2,
		UnitPrice:       decimal.NewFromInt(-1),
	}
	errs := m.Validate()
	for _, field := range []string{"name", "sku", "category_id", "quantity", "minimum_quantity", "unit_price"} {
		assert.True(t, errs.Has(field), "expected violation on %s, got %v", field, errs)
	}
	assert.False(t, errs.Has("description"))
}

func TestMaterialValidateUnitPricePrecision(t *testing.T) {
	m := validMaterial()
	m.UnitPrice = decimal.RequireFromString("1.005")
	errs := m.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "unit_price", errs[0].Field)

	m.UnitPrice = decimal.RequireFromString("10000000000000000")
	assert.True(t, m.Validate().Has("unit_price"))
}

func TestMaterialValidateQuantityFitsInteger(t *testing.T) {
	m := validMaterial()
	m.Quantity = math.MaxInt32
	m.MinimumQuantity = math.MaxInt32
	assert.Empty(t, m.Validate())

	m.Quantity = math.MaxInt32 + 1
	m.MinimumQuantity = math.MaxInt32 + 1
	errs := m.Validate()
	require.Len(t, errs, 2)
	assert.True(t, errs.Has("quantity"))
	assert.True(t, errs.Has("minimum_quantity"))
}

func TestMaterialNormalize(t *testing.T) {
	m := Material{Name: "  Arduino Nano ", SKU: " ard-nano "}
	m.Normalize()
	assert.Equal(t, "Arduino Nano", m.Name)
	assert.Equal(t, "ARD-NANO", m.SKU)
}

func TestMaterialFilterMatches(t *testing.T) {
	uno := Material{Name: "Arduino Uno R3", SKU: "ARD-UNO-R3", CategoryID: 1}
	dht := Material{Name: "DHT22 Temperature Sensor", SKU: "SEN-DHT22", CategoryID: 2}

	assert.True(t, MaterialFilter{}.Matches(uno))
	assert.True(t, MaterialFilter{Search: "arduino"}.Matches(uno))
	assert.True(t, MaterialFilter{Search: "dht22"}.Matches(dht))
	assert.True(t, MaterialFilter{Search: "sen-"}.Matches(dht))
	assert.False(t, MaterialFilter{Search: "arduino"}.Matches(dht))
	assert.False(t, MaterialFilter{CategoryID: 2}.Matches(uno))
	assert.True(t, MaterialFilter{Search: "R3", CategoryID: 1}.Matches(uno))
}

func TestMaterialJSONIncludesDerivedFields(t *testing.T) {
	m := validMaterial()
	m.Quantity = 5
	m.MinimumQuantity = 8

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, true, out["low_stock"])
	assert.Equal(t, "23.00", out["unit_price"])
	assert.Equal(t, "ARD-UNO-R3", out["sku"])
}

func TestCategoryValidate(t *testing.T) {
	c := Category{Name: "  "}
	c.Normalize()
	assert.True(t, c.Validate().Has("name"))

	c = Category{Name: "Sensors", Description: strings.Repeat("d", CategoryDescriptionMaxLen+1)}
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "description", errs[0].Field)
	assert.Contains(t, errs.Error(), "description: must be at most 500 characters")
}
