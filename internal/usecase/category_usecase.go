package usecase

import (
	"context"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/cache"
	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	materialRepo domain.MaterialRepository
	cache        cache.CategoryCache
	log          *logrus.Logger
}

func NewCategoryUseCase(cRepo domain.CategoryRepository, mRepo domain.MaterialRepository, c cache.CategoryCache, logger *logrus.Logger) CategoryUseCase {
	if c == nil {
		c = cache.NewNoop()
	}
	return &categoryUseCase{
		categoryRepo: cRepo,
		materialRepo: mRepo,
		cache:        c,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Normalize()
	if errs := category.Validate(); errs != nil {
		uc.log.Warnf("Use Case: Rejected category create: %v", errs)
		return nil, errs
	}

	uc.log.Infof("Use Case: Attempting to create category with name '%s'", category.Name)
	created, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	uc.cache.Invalidate(ctx)

	uc.log.Infof("Use Case: Category '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

// GetCategoryByID returns the category together with the materials filed under it.
func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get category with invalid ID: %d", id)
		return nil, fmt.Errorf("category id %d: %w", id, domain.ErrInvalidID)
	}

	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %d: %v", id, err)
		return nil, err
	}

	materials, err := uc.materialRepo.ListMaterials(ctx, domain.MaterialFilter{CategoryID: id})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load materials of category ID %d: %v", id, err)
		return nil, fmt.Errorf("could not load category materials: %w", err)
	}
	category.Materials = materials
	category.MaterialCount = int64(len(materials))
	return category, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid ID: %d", category.ID)
		return nil, fmt.Errorf("category id %d: %w", category.ID, domain.ErrInvalidID)
	}
	category.Normalize()
	if errs := category.Validate(); errs != nil {
		uc.log.Warnf("Use Case: Rejected update of category ID %d: %v", category.ID, errs)
		return nil, errs
	}

	uc.log.Infof("Use Case: Attempting to update category ID %d at version %d", category.ID, category.Version)
	updated, err := uc.categoryRepo.UpdateCategory(ctx, category)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update category ID %d: %v", category.ID, err)
		return nil, err
	}
	uc.cache.Invalidate(ctx)

	uc.log.Infof("Use Case: Category updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid ID: %d", id)
		return fmt.Errorf("category id %d: %w", id, domain.ErrInvalidID)
	}

	uc.log.Infof("Use Case: Attempting to delete category ID %d", id)
	if err := uc.categoryRepo.DeleteCategory(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %d: %v", id, err)
		return err
	}
	uc.cache.Invalidate(ctx)

	uc.log.Infof("Use Case: Category deleted successfully for ID %d", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, gen, ok := uc.cache.GetCategories(ctx)
	if ok {
		uc.log.Debugf("Use Case: Served %d categories from cache", len(categories))
		return categories, nil
	}

	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}
	uc.cache.SetCategories(ctx, gen, categories)

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}
