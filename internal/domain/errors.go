package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("record was modified by another request, reload and try again")
	ErrDuplicateSKU     = errors.New("a material with this sku already exists")
	ErrCategoryInUse    = errors.New("category is still referenced by materials")
	ErrCategoryNotFound = errors.New("referenced category does not exist")
	ErrConstraint       = errors.New("data constraint violation")
	ErrInvalidID        = errors.New("invalid identifier")

	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
)
