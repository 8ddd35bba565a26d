package seed

import (
	"context"
	"io"
	"testing"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/repository/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func deps(s *memory.Store) Deps {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Deps{
		Categories:    s.Categories(),
		Materials:     s.Materials(),
		Users:         s.Users(),
		Roles:         s.Roles(),
		AdminEmail:    " Admin@Inventory.local ",
		AdminPassword: "Admin123!",
		Log:           log,
	}
}

func TestRun_SeedsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, Run(ctx, deps(s)))
	require.NoError(t, Run(ctx, deps(s)))

	categories, err := s.Categories().CountCategories(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, categories)

	stats, err := s.Materials().Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalMaterials)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.Equal(t, "1534.50", stats.InventoryValue.StringFixed(2))

	admin, err := s.Users().GetUserByEmail(ctx, "admin@inventory.local")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin123!")))

	roles, err := s.Roles().ListRoles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, domain.Roles(), roles)
}

func TestRun_LeavesExistingDataAlone(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	_, err := s.Categories().CreateCategory(ctx, &domain.Category{Name: "Tools"})
	require.NoError(t, err)

	require.NoError(t, Run(ctx, deps(s)))

	categories, err := s.Categories().ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Tools", categories[0].Name)

	n, err := s.Materials().CountMaterials(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
