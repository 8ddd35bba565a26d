package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id, version`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description).Scan(&category.ID, &category.Version)
	if err != nil {
		r.log.Errorf("Repository: Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Repository: Category created with ID: %d, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
        SELECT c.id, c.name, c.description, c.version,
               (SELECT COUNT(*) FROM materials m WHERE m.category_id = c.id)
        FROM categories c
        WHERE c.id = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Version,
		&category.MaterialCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %d not found", id)
			return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
        UPDATE categories
        SET name = $1, description = $2, version = version + 1
        WHERE id = $3 AND version = $4
        RETURNING version`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.ID, category.Version).Scan(&category.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.staleOrMissing(ctx, category.ID)
		}
		r.log.Errorf("Repository: Failed to update category ID %d: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	r.log.Infof("Repository: Category %d updated to version %d", category.ID, category.Version)
	return r.GetCategoryByID(ctx, category.ID)
}

// staleOrMissing tells a vanished row apart from a version mismatch after
// a guarded update touched nothing.
func (r *postgresCategoryRepository) staleOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("could not check category existence: %w", err)
	}
	if !exists {
		r.log.Warnf("Repository: Category with ID %d not found for update", id)
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Warnf("Repository: Stale update rejected for category ID %d", id)
	return fmt.Errorf("category with id %d: %w", id, domain.ErrConflict)
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pqErrorCode(err) == foreignKeyViolation {
			r.log.Warnf("Repository: Category ID %d is still referenced by materials", id)
			return fmt.Errorf("category with id %d: %w", id, domain.ErrCategoryInUse)
		}
		r.log.Errorf("Repository: Failed to delete category ID %d: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting category ID %d: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent category ID %d", id)
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}

	r.log.Infof("Repository: Category deleted with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
        SELECT c.id, c.name, c.description, c.version, COUNT(m.id)
        FROM categories c
        LEFT JOIN materials m ON m.category_id = c.id
        GROUP BY c.id
        ORDER BY LOWER(c.name) COLLATE "C" ASC, c.id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.Version, &category.MaterialCount); err != nil {
			r.log.Errorf("Repository: Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category data: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.log.Debugf("Repository: Retrieved %d categories", len(categories))
	return categories, nil
}

func (r *postgresCategoryRepository) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("could not count categories: %w", err)
	}
	return n, nil
}
