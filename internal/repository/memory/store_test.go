package memory

import (
	"context"
	"testing"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCategory(t *testing.T, s *Store, name string) *domain.Category {
	t.Helper()
	c, err := s.Categories().CreateCategory(context.Background(), &domain.Category{Name: name})
	require.NoError(t, err)
	return c
}

func newMaterial(name, sku string, categoryID int64, qty, min int, price string) *domain.Material {
	return &domain.Material{
		Name:            name,
		SKU:             sku,
		CategoryID:      categoryID,
		Quantity:        qty,
		MinimumQuantity: min,
		UnitPrice:       decimal.RequireFromString(price),
	}
}

func TestMaterials_DuplicateSKURejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCategory(t, s, "Sensors")

	_, err := s.Materials().CreateMaterial(ctx, newMaterial("DHT22", "SEN-DHT22", c.ID, 1, 1, "9.50"))
	require.NoError(t, err)

	_, err = s.Materials().CreateMaterial(ctx, newMaterial("Other", "SEN-DHT22", c.ID, 1, 1, "1.00"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	n, err := s.Materials().CountMaterials(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMaterials_UnknownCategoryRejected(t *testing.T) {
	s := NewStore()
	_, err := s.Materials().CreateMaterial(context.Background(), newMaterial("X", "X-1", 42, 1, 1, "1.00"))
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestMaterials_NegativeValuesRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCategory(t, s, "Sensors")

	_, err := s.Materials().CreateMaterial(ctx, newMaterial("X", "X-1", c.ID, -1, 0, "1.00"))
	assert.ErrorIs(t, err, domain.ErrConstraint)
	_, err = s.Materials().CreateMaterial(ctx, newMaterial("X", "X-1", c.ID, 0, 0, "-0.01"))
	assert.ErrorIs(t, err, domain.ErrConstraint)
}

func TestCategories_DeleteRestrictedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	used := seedCategory(t, s, "Microcontrollers")
	empty := seedCategory(t, s, "Passive Components")

	_, err := s.Materials().CreateMaterial(ctx, newMaterial("Arduino Nano", "ARD-NANO", used.ID, 5, 8, "19.90"))
	require.NoError(t, err)

	err = s.Categories().DeleteCategory(ctx, used.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	require.NoError(t, s.Categories().DeleteCategory(ctx, empty.ID))
	_, err = s.Categories().GetCategoryByID(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.Categories().DeleteCategory(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterials_StaleUpdateConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCategory(t, s, "Microcontrollers")
	created, err := s.Materials().CreateMaterial(ctx, newMaterial("Arduino Nano", "ARD-NANO", c.ID, 5, 8, "19.90"))
	require.NoError(t, err)

	first := *created
	second := *created

	first.Quantity = 20
	updated, err := s.Materials().UpdateMaterial(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)
	assert.False(t, updated.IsLowStock())

	second.Quantity = 1
	_, err = s.Materials().UpdateMaterial(ctx, &second)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.Materials().GetMaterialByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Quantity)
}

func TestCategories_StaleUpdateConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	c := seedCategory(t, s, "Sensors")

	a, b := *c, *c
	a.Name = "Sensors & Probes"
	_, err := s.Categories().UpdateCategory(ctx, &a)
	require.NoError(t, err)

	b.Name = "Transducers"
	_, err = s.Categories().UpdateCategory(ctx, &b)
	assert.ErrorIs(t, err, domain.ErrConflict)

	missing := domain.Category{ID: 999, Name: "x", Version: 1}
	_, err = s.Categories().UpdateCategory(ctx, &missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterials_OrderIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	mcu := seedCategory(t, s, "Microcontrollers")
	for _, m := range []*domain.Material{
		newMaterial("Zebra board", "ZB-1", mcu.ID, 1, 0, "1.00"),
		newMaterial("arduino kit", "AK-1", mcu.ID, 1, 0, "1.00"),
	} {
		_, err := s.Materials().CreateMaterial(ctx, m)
		require.NoError(t, err)
	}

	got, err := s.Materials().ListMaterials(ctx, domain.MaterialFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "arduino kit", got[0].Name)
	assert.Equal(t, "Zebra board", got[1].Name)
}

func TestMaterials_FilterOrderedByName(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	mcu := seedCategory(t, s, "Microcontrollers")
	sensors := seedCategory(t, s, "Sensors")

	for _, m := range []*domain.Material{
		newMaterial("Arduino Uno R3", "ARD-UNO-R3", mcu.ID, 50, 10, "23.00"),
		newMaterial("DHT22 Temperature Sensor", "SEN-DHT22", sensors.ID, 30, 15, "9.50"),
		newMaterial("Arduino Nano", "ARD-NANO", mcu.ID, 5, 8, "19.90"),
	} {
		_, err := s.Materials().CreateMaterial(ctx, m)
		require.NoError(t, err)
	}

	got, err := s.Materials().ListMaterials(ctx, domain.MaterialFilter{Search: "arduino"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Arduino Nano", got[0].Name)
	assert.Equal(t, "Arduino Uno R3", got[1].Name)
	assert.Equal(t, "Microcontrollers", got[0].CategoryName)

	got, err = s.Materials().ListMaterials(ctx, domain.MaterialFilter{Search: "sen-", CategoryID: sensors.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SEN-DHT22", got[0].SKU)

	got, err = s.Materials().ListMaterials(ctx, domain.MaterialFilter{CategoryID: sensors.ID + 100})
	require.NoError(t, err)
	assert.Empty(t, got)

	stats, err := s.Materials().Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalMaterials)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.Equal(t, "1534.50", stats.InventoryValue.StringFixed(2))

	cats, err := s.Categories().ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.EqualValues(t, 2, cats[0].MaterialCount)
}

func TestUsers_DuplicateEmailAndRoles(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Users().CreateUser(ctx, &domain.User{Email: "a@b.io", PasswordHash: "x", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrConstraint)

	require.NoError(t, s.Roles().EnsureRole(ctx, domain.RoleUser))
	require.NoError(t, s.Roles().EnsureRole(ctx, domain.RoleUser))

	u, err := s.Users().CreateUser(ctx, &domain.User{Email: "a@b.io", PasswordHash: "x", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = s.Users().CreateUser(ctx, &domain.User{Email: "a@b.io", PasswordHash: "y", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	byEmail, err := s.Users().GetUserByEmail(ctx, "a@b.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	roles, err := s.Roles().ListRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser}, roles)
}
