// Package memory is an in-process implementation of the domain gateways. It
// enforces the same integrity rules as the Postgres schema: SKU uniqueness,
// restrict-on-delete for referenced categories and version-guarded updates.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/shopspring/decimal"
)

// Store keeps every table behind one mutex.
type Store struct {
	mu sync.RWMutex

	categories map[int64]domain.Category
	materials  map[int64]domain.Material
	users      map[int64]domain.User
	roles      map[domain.Role]struct{}

	categorySeq int64
	materialSeq int64
	userSeq     int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		materials:  make(map[int64]domain.Material),
		users:      make(map[int64]domain.User),
		roles:      make(map[domain.Role]struct{}),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Categories() domain.CategoryRepository { return categoryRepo{s} }
func (s *Store) Materials() domain.MaterialRepository  { return materialRepo{s} }
func (s *Store) Users() domain.UserRepository          { return userRepo{s} }
func (s *Store) Roles() domain.RoleRepository          { return roleRepo{s} }

func (s *Store) materialCount(categoryID int64) int64 {
	var n int64
	for _, m := range s.materials {
		if m.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (s *Store) skuTaken(sku string, exceptID int64) bool {
	for _, m := range s.materials {
		if m.ID != exceptID && strings.EqualFold(m.SKU, sku) {
			return true
		}
	}
	return false
}

// checkMaterial mirrors the schema constraints on the materials table.
func (s *Store) checkMaterial(m *domain.Material) error {
	if m.Quantity < 0 || m.MinimumQuantity < 0 || m.UnitPrice.IsNegative() {
		return fmt.Errorf("material '%s': %w", m.SKU, domain.ErrConstraint)
	}
	if _, ok := s.categories[m.CategoryID]; !ok {
		return fmt.Errorf("category with id %d: %w", m.CategoryID, domain.ErrCategoryNotFound)
	}
	if s.skuTaken(m.SKU, m.ID) {
		return fmt.Errorf("sku '%s': %w", m.SKU, domain.ErrDuplicateSKU)
	}
	return nil
}

func (s *Store) withCategoryName(m domain.Material) domain.Material {
	m.CategoryName = s.categories[m.CategoryID].Name
	m.UnitPrice = m.UnitPrice.Round(domain.UnitPriceScale)
	return m
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.categorySeq++
	stored := domain.Category{ID: r.s.categorySeq, Name: c.Name, Description: c.Description, Version: 1}
	r.s.categories[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r categoryRepo) GetCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	c.MaterialCount = r.s.materialCount(id)
	return &c, nil
}

func (r categoryRepo) UpdateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.categories[c.ID]
	if !ok {
		return nil, fmt.Errorf("category with id %d: %w", c.ID, domain.ErrNotFound)
	}
	if current.Version != c.Version {
		return nil, fmt.Errorf("category with id %d: %w", c.ID, domain.ErrConflict)
	}
	current.Name = c.Name
	current.Description = c.Description
	current.Version++
	r.s.categories[c.ID] = current

	out := current
	out.MaterialCount = r.s.materialCount(c.ID)
	return &out, nil
}

func (r categoryRepo) DeleteCategory(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	if r.s.materialCount(id) > 0 {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrCategoryInUse)
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c.MaterialCount = r.s.materialCount(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return nameOrder(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out, nil
}

func (r categoryRepo) CountCategories(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.categories)), nil
}

type materialRepo struct{ s *Store }

func (r materialRepo) CreateMaterial(_ context.Context, m *domain.Material) (*domain.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *m
	stored.ID = 0
	if err := r.s.checkMaterial(&stored); err != nil {
		return nil, err
	}
	r.s.materialSeq++
	now := r.s.now()
	stored.ID = r.s.materialSeq
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Version = 1
	stored.CategoryName = ""
	r.s.materials[stored.ID] = stored

	out := r.s.withCategoryName(stored)
	return &out, nil
}

func (r materialRepo) GetMaterialByID(_ context.Context, id int64) (*domain.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.materials[id]
	if !ok {
		return nil, fmt.Errorf("material with id %d: %w", id, domain.ErrNotFound)
	}
	out := r.s.withCategoryName(m)
	return &out, nil
}

func (r materialRepo) UpdateMaterial(_ context.Context, m *domain.Material) (*domain.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.materials[m.ID]
	if !ok {
		return nil, fmt.Errorf("material with id %d: %w", m.ID, domain.ErrNotFound)
	}
	if current.Version != m.Version {
		return nil, fmt.Errorf("material with id %d: %w", m.ID, domain.ErrConflict)
	}
	next := *m
	if err := r.s.checkMaterial(&next); err != nil {
		return nil, err
	}
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.s.now()
	next.Version = current.Version + 1
	next.CategoryName = ""
	r.s.materials[m.ID] = next

	out := r.s.withCategoryName(next)
	return &out, nil
}

func (r materialRepo) DeleteMaterial(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.materials[id]; !ok {
		return fmt.Errorf("material with id %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.materials, id)
	return nil
}

func (r materialRepo) ListMaterials(_ context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Material{}
	for _, m := range r.s.materials {
		if filter.Matches(m) {
			out = append(out, r.s.withCategoryName(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return nameOrder(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out, nil
}

func (r materialRepo) CountMaterials(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.materials)), nil
}

func (r materialRepo) Stats(_ context.Context) (*domain.InventoryStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &domain.InventoryStats{InventoryValue: decimal.Zero}
	for _, m := range r.s.materials {
		stats.TotalMaterials++
		stats.TotalQuantity += int64(m.Quantity)
		if m.IsLowStock() {
			stats.LowStockCount++
		}
		stats.InventoryValue = stats.InventoryValue.Add(m.StockValue())
	}
	return stats, nil
}

func (r materialRepo) RecentlyUpdated(_ context.Context, limit int) ([]domain.Material, error) {
	if limit <= 0 {
		limit = 5
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Material, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		out = append(out, r.s.withCategoryName(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[u.Role]; !ok {
		return nil, fmt.Errorf("role %s: %w", u.Role, domain.ErrConstraint)
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("user with email '%s': %w", u.Email, domain.ErrDuplicateEmail)
		}
	}
	r.s.userSeq++
	stored := *u
	stored.ID = r.s.userSeq
	stored.CreatedAt = r.s.now()
	r.s.users[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
}

func (r userRepo) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

type roleRepo struct{ s *Store }

func (r roleRepo) EnsureRole(_ context.Context, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles[role] = struct{}{}
	return nil
}

func (r roleRepo) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Role, 0, len(r.s.roles))
	for role := range r.s.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// nameOrder sorts case-insensitively by byte value, then by id, matching
// ORDER BY LOWER(name) COLLATE "C", id in the Postgres gateway.
func nameOrder(nameA string, idA int64, nameB string, idB int64) bool {
	a, b := strings.ToLower(nameA), strings.ToLower(nameB)
	if a != b {
		return a < b
	}
	return idA < idB
}
