package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/sirupsen/logrus"
)

const materialColumns = `
        m.id, m.name, m.description, m.sku, m.category_id, c.name,
        m.quantity, m.minimum_quantity, m.unit_price,
        m.created_at, m.updated_at, m.version
        FROM materials m
        JOIN categories c ON c.id = m.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(row rowScanner, m *domain.Material) error {
	return row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.SKU,
		&m.CategoryID,
		&m.CategoryName,
		&m.Quantity,
		&m.MinimumQuantity,
		&m.UnitPrice,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Version,
	)
}

type postgresMaterialRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresMaterialRepository(db *sql.DB, logger *logrus.Logger) domain.MaterialRepository {
	return &postgresMaterialRepository{
		db:  db,
		log: logger,
	}
}

// writeError maps constraint violations raised by inserts and updates.
func (r *postgresMaterialRepository) writeError(m *domain.Material, err error) error {
	switch pqErrorCode(err) {
	case uniqueViolation:
		r.log.Warnf("Repository: Duplicate SKU '%s'", m.SKU)
		return fmt.Errorf("sku '%s': %w", m.SKU, domain.ErrDuplicateSKU)
	case foreignKeyViolation:
		r.log.Warnf("Repository: Material '%s' references non-existent category ID %d", m.SKU, m.CategoryID)
		return fmt.Errorf("category with id %d: %w", m.CategoryID, domain.ErrCategoryNotFound)
	case checkViolation, numericOutOfRange:
		r.log.Warnf("Repository: Check constraint violation for material '%s': %v", m.SKU, err)
		return fmt.Errorf("material '%s': %w", m.SKU, domain.ErrConstraint)
	}
	return nil
}

func (r *postgresMaterialRepository) CreateMaterial(ctx context.Context, m *domain.Material) (*domain.Material, error) {
	query := `
        INSERT INTO materials (name, description, sku, category_id, quantity, minimum_quantity, unit_price)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		m.Name, m.Description, m.SKU, m.CategoryID, m.Quantity, m.MinimumQuantity, m.UnitPrice,
	).Scan(&id)
	if err != nil {
		if mapped := r.writeError(m, err); mapped != nil {
			return nil, mapped
		}
		r.log.Errorf("Repository: Failed to create material '%s': %v", m.SKU, err)
		return nil, fmt.Errorf("could not create material: %w", err)
	}
	r.log.Infof("Repository: Material created with ID: %d, SKU: %s", id, m.SKU)
	return r.GetMaterialByID(ctx, id)
}

func (r *postgresMaterialRepository) GetMaterialByID(ctx context.Context, id int64) (*domain.Material, error) {
	query := `SELECT ` + materialColumns + ` WHERE m.id = $1`
	m := &domain.Material{}
	if err := scanMaterial(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Material with ID %d not found", id)
			return nil, fmt.Errorf("material with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get material by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get material by id: %w", err)
	}
	return m, nil
}

func (r *postgresMaterialRepository) UpdateMaterial(ctx context.Context, m *domain.Material) (*domain.Material, error) {
	query := `
        UPDATE materials
        SET name = $1, description = $2, sku = $3, category_id = $4,
            quantity = $5, minimum_quantity = $6, unit_price = $7,
            updated_at = now(), version = version + 1
        WHERE id = $8 AND version = $9`
	result, err := r.db.ExecContext(ctx, query,
		m.Name, m.Description, m.SKU, m.CategoryID, m.Quantity, m.MinimumQuantity, m.UnitPrice,
		m.ID, m.Version,
	)
	if err != nil {
		if mapped := r.writeError(m, err); mapped != nil {
			return nil, mapped
		}
		r.log.Errorf("Repository: Failed to update material ID %d: %v", m.ID, err)
		return nil, fmt.Errorf("could not update material: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after updating material ID %d: %v", m.ID, err)
		return nil, fmt.Errorf("could not confirm material update: %w", err)
	}
	if rowsAffected == 0 {
		return nil, r.staleOrMissing(ctx, m.ID)
	}

	r.log.Infof("Repository: Material %d updated", m.ID)
	return r.GetMaterialByID(ctx, m.ID)
}

func (r *postgresMaterialRepository) staleOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("could not check material existence: %w", err)
	}
	if !exists {
		r.log.Warnf("Repository: Material with ID %d not found for update", id)
		return fmt.Errorf("material with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Warnf("Repository: Stale update rejected for material ID %d", id)
	return fmt.Errorf("material with id %d: %w", id, domain.ErrConflict)
}

func (r *postgresMaterialRepository) DeleteMaterial(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete material ID %d: %v", id, err)
		return fmt.Errorf("could not delete material: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting material ID %d: %v", id, err)
		return fmt.Errorf("could not confirm material deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent material ID %d", id)
		return fmt.Errorf("material with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Repository: Material deleted with ID: %d", id)
	return nil
}

func (r *postgresMaterialRepository) ListMaterials(ctx context.Context, filter domain.MaterialFilter) ([]domain.Material, error) {
	var (
		where []string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, likePattern(search))
		where = append(where, fmt.Sprintf("(LOWER(m.name) LIKE $%d OR LOWER(m.sku) LIKE $%d)", len(args), len(args)))
	}
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("m.category_id = $%d", len(args)))
	}

	query := `SELECT ` + materialColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY LOWER(m.name) COLLATE "C" ASC, m.id ASC`

	r.log.Debugf("Repository: Listing materials with query: %s args: %v", query, args)
	return r.queryMaterials(ctx, query, args...)
}

func (r *postgresMaterialRepository) RecentlyUpdated(ctx context.Context, limit int) ([]domain.Material, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + materialColumns + ` ORDER BY m.updated_at DESC, m.id DESC LIMIT $1`
	return r.queryMaterials(ctx, query, limit)
}

func (r *postgresMaterialRepository) queryMaterials(ctx context.Context, query string, args ...any) ([]domain.Material, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list materials: %v", err)
		return nil, fmt.Errorf("could not list materials: %w", err)
	}
	defer rows.Close()

	materials := []domain.Material{}
	for rows.Next() {
		var m domain.Material
		if err := scanMaterial(rows, &m); err != nil {
			r.log.Errorf("Repository: Failed to scan material row: %v", err)
			return nil, fmt.Errorf("error scanning material data: %w", err)
		}
		materials = append(materials, m)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during materials list iteration: %v", err)
		return nil, fmt.Errorf("error iterating materials: %w", err)
	}
	return materials, nil
}

func (r *postgresMaterialRepository) CountMaterials(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("could not count materials: %w", err)
	}
	return n, nil
}

func (r *postgresMaterialRepository) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE quantity <= minimum_quantity),
               COALESCE(SUM(quantity), 0),
               COALESCE(SUM(quantity * unit_price), 0)
        FROM materials`
	stats := &domain.InventoryStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalMaterials,
		&stats.LowStockCount,
		&stats.TotalQuantity,
		&stats.InventoryValue,
	)
	if err != nil {
		r.log.Errorf("Repository: Failed to compute inventory stats: %v", err)
		return nil, fmt.Errorf("could not compute inventory stats: %w", err)
	}
	return stats, nil
}
