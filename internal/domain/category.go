package domain

import (
	"context"
	"strings"
)

const (
	CategoryNameMaxLen        = 100
	CategoryDescriptionMaxLen = 500
)

type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Version       int64      `json:"version"`
	MaterialCount int64      `json:"material_count"`
	Materials     []Material `json:"materials,omitempty"`
}

// Normalize trims user supplied text fields in place.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
}

// Validate checks the field constraints of a category.
func (c *Category) Validate() ValidationErrors {
	var errs ValidationErrors
	errs.required("name", c.Name, CategoryNameMaxLen)
	errs.maxLen("description", c.Description, CategoryDescriptionMaxLen)
	return errs
}

// CategoryRepository is the gateway to the categories table. UpdateCategory
// treats c.Version as the version the caller last read.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	CountCategories(ctx context.Context) (int64, error)
}
