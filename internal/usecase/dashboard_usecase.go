package usecase

import (
	"context"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/metrics"

	"github.com/sirupsen/logrus"
)

const recentlyUpdatedLimit = 5

type Dashboard struct {
	Stats           domain.InventoryStats `json:"stats"`
	LowStock        []domain.Material     `json:"low_stock"`
	RecentlyUpdated []domain.Material     `json:"recently_updated"`
}

type DashboardUseCase interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type dashboardUseCase struct {
	categoryRepo domain.CategoryRepository
	materialRepo domain.MaterialRepository
	metrics      *metrics.Metrics
	log          *logrus.Logger
}

func NewDashboardUseCase(cRepo domain.CategoryRepository, mRepo domain.MaterialRepository, m *metrics.Metrics, logger *logrus.Logger) DashboardUseCase {
	return &dashboardUseCase{
		categoryRepo: cRepo,
		materialRepo: mRepo,
		metrics:      m,
		log:          logger,
	}
}

func (uc *dashboardUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := uc.materialRepo.Stats(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to compute inventory stats: %v", err)
		return nil, err
	}
	categories, err := uc.categoryRepo.CountCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to count categories: %v", err)
		return nil, err
	}
	stats.TotalCategories = categories

	all, err := uc.materialRepo.ListMaterials(ctx, domain.MaterialFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list materials: %w", err)
	}
	lowStock := []domain.Material{}
	for _, m := range all {
		if m.IsLowStock() {
			lowStock = append(lowStock, m)
		}
	}

	recent, err := uc.materialRepo.RecentlyUpdated(ctx, recentlyUpdatedLimit)
	if err != nil {
		return nil, fmt.Errorf("could not list recently updated materials: %w", err)
	}

	uc.metrics.SetInventory(stats)
	return &Dashboard{
		Stats:           *stats,
		LowStock:        lowStock,
		RecentlyUpdated: recent,
	}, nil
}
