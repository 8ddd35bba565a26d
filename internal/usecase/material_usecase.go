package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/cache"
	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/events"
	"github.com/agassama1998/materialmanagementapp/internal/metrics"

	"github.com/sirupsen/logrus"
)

// MaterialListing is the filtered material list plus every category, so the
// caller can render the category filter.
type MaterialListing struct {
	Materials  []domain.Material `json:"materials"`
	Categories []domain.Category `json:"categories"`
	Search     string            `json:"search,omitempty"`
	CategoryID int64             `json:"category_id,omitempty"`
}

type MaterialUseCase interface {
	CreateMaterial(ctx context.Context, material *domain.Material) (*domain.Material, error)
	GetMaterialByID(ctx context.Context, id int64) (*domain.Material, error)
	UpdateMaterial(ctx context.Context, material *domain.Material) (*domain.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	ListMaterials(ctx context.Context, filter domain.MaterialFilter) (*MaterialListing, error)
}

type materialUseCase struct {
	materialRepo domain.MaterialRepository
	categories   CategoryUseCase
	cache        cache.CategoryCache
	publisher    events.Publisher
	metrics      *metrics.Metrics
	log          *logrus.Logger
}

func NewMaterialUseCase(
	mRepo domain.MaterialRepository,
	categories CategoryUseCase,
	c cache.CategoryCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logrus.Logger,
) MaterialUseCase {
	if c == nil {
		c = cache.NewNoop()
	}
	if publisher == nil {
		publisher = events.NewNoop()
	}
	return &materialUseCase{
		materialRepo: mRepo,
		categories:   categories,
		cache:        c,
		publisher:    publisher,
		metrics:      m,
		log:          logger,
	}
}

func (uc *materialUseCase) CreateMaterial(ctx context.Context, material *domain.Material) (*domain.Material, error) {
	material.Normalize()
	if errs := material.Validate(); errs != nil {
		uc.log.Warnf("Use Case: Rejected material create: %v", errs)
		return nil, errs
	}

	uc.log.Infof("Use Case: Attempting to create material '%s' (SKU %s)", material.Name, material.SKU)
	created, err := uc.materialRepo.CreateMaterial(ctx, material)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create material '%s': %v", material.SKU, err)
		return nil, categoryFieldError(err)
	}
	uc.cache.Invalidate(ctx)

	uc.publish(ctx, events.MaterialCreated, created)
	if created.IsLowStock() {
		uc.publish(ctx, events.MaterialLowStock, created)
	}

	uc.log.Infof("Use Case: Material '%s' created successfully with ID %d", created.SKU, created.ID)
	return created, nil
}

func (uc *materialUseCase) GetMaterialByID(ctx context.Context, id int64) (*domain.Material, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get material with invalid ID: %d", id)
		return nil, fmt.Errorf("material id %d: %w", id, domain.ErrInvalidID)
	}
	material, err := uc.materialRepo.GetMaterialByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get material ID %d: %v", id, err)
		return nil, err
	}
	return material, nil
}

// UpdateMaterial overwrites every editable field. material.Version must be the
// version the caller read; a newer stored version yields domain.ErrConflict.
func (uc *materialUseCase) UpdateMaterial(ctx context.Context, material *domain.Material) (*domain.Material, error) {
	if material.ID <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid material ID: %d", material.ID)
		return nil, fmt.Errorf("material id %d: %w", material.ID, domain.ErrInvalidID)
	}
	material.Normalize()
	if errs := material.Validate(); errs != nil {
		uc.log.Warnf("Use Case: Rejected update of material ID %d: %v", material.ID, errs)
		return nil, errs
	}

	previous, err := uc.materialRepo.GetMaterialByID(ctx, material.ID)
	if err != nil {
		uc.log.Warnf("Use Case: Material ID %d not found for update: %v", material.ID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to update material ID %d at version %d", material.ID, material.Version)
	updated, err := uc.materialRepo.UpdateMaterial(ctx, material)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update material ID %d: %v", material.ID, err)
		return nil, categoryFieldError(err)
	}
	if previous.CategoryID != updated.CategoryID {
		uc.cache.Invalidate(ctx)
	}

	uc.publish(ctx, events.MaterialUpdated, updated)
	if updated.IsLowStock() && !previous.IsLowStock() {
		uc.publish(ctx, events.MaterialLowStock, updated)
	}

	uc.log.Infof("Use Case: Material updated successfully for ID %d, now version %d", updated.ID, updated.Version)
	return updated, nil
}

func (uc *materialUseCase) DeleteMaterial(ctx context.Context, id int64) error {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid material ID: %d", id)
		return fmt.Errorf("material id %d: %w", id, domain.ErrInvalidID)
	}

	material, err := uc.materialRepo.GetMaterialByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Material ID %d not found for delete: %v", id, err)
		return err
	}
	if err := uc.materialRepo.DeleteMaterial(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete material ID %d: %v", id, err)
		return err
	}
	uc.cache.Invalidate(ctx)
	uc.publish(ctx, events.MaterialDeleted, material)

	uc.log.Infof("Use Case: Material deleted successfully for ID %d", id)
	return nil
}

func (uc *materialUseCase) ListMaterials(ctx context.Context, filter domain.MaterialFilter) (*MaterialListing, error) {
	materials, err := uc.materialRepo.ListMaterials(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list materials: %v", err)
		return nil, fmt.Errorf("could not retrieve materials: %w", err)
	}
	categories, err := uc.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Retrieved %d materials (search=%q, category=%d)", len(materials), filter.Search, filter.CategoryID)
	return &MaterialListing{
		Materials:  materials,
		Categories: categories,
		Search:     filter.Search,
		CategoryID: filter.CategoryID,
	}, nil
}

// publish runs after the write has been stored; a failed publish is logged
// and never undoes the write.
func (uc *materialUseCase) publish(ctx context.Context, t events.EventType, m *domain.Material) {
	actor := ""
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		actor = p.Email
	}
	ev := events.NewMaterialEvent(t, m, actor)
	ev.RequestID = domain.RequestIDFromContext(ctx)

	err := uc.publisher.Publish(ctx, ev)
	uc.metrics.EventPublished(string(t), err)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to publish %s for material ID %d: %v", t, m.ID, err)
	}
}

// categoryFieldError reports a dangling category reference as a field error
// on category_id so it is answered like any other validation failure.
func categoryFieldError(err error) error {
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return domain.NewFieldError("category_id", "does not exist")
	}
	return err
}
