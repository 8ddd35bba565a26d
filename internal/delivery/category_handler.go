package delivery

import (
	"fmt"
	"net/http"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/middleware"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type categoryRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Version     int64  `json:"version" form:"version"`
}

func (r categoryRequest) toDomain() *domain.Category {
	return &domain.Category{Name: r.Name, Description: r.Description, Version: r.Version}
}

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categories", middleware.RequireAuth())
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategoryByID)
		categories.PUT("/:id", h.UpdateCategory)
		categories.POST("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
		categories.POST("/:id/delete", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warnf("Failed to bind request for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), req.toDomain())
	if err != nil {
		h.log.Warnf("Failed to create category '%s': %v", req.Name, err)
		respondError(c, "Failed to create category", err, req)
		return
	}

	h.log.Infof("Category created successfully: ID %d, Name %s", created.ID, created.Name)
	c.Header("ETag", etag(created.Version))
	respondWrite(c, http.StatusCreated, "Category created successfully", "/categories", created)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to retrieve category", err, nil)
		return
	}

	c.Header("ETag", etag(category.Version))
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warnf("Failed to bind request for update category ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	version, err := expectedVersion(c, req.Version)
	if err != nil {
		respondError(c, "Failed to update category", err, req)
		return
	}
	category := req.toDomain()
	category.ID = id
	category.Version = version

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), category)
	if err != nil {
		h.log.Warnf("Failed to update category ID %d: %v", id, err)
		respondError(c, "Failed to update category", err, req)
		return
	}

	h.log.Infof("Category updated successfully: ID %d", id)
	c.Header("ETag", etag(updated.Version))
	respondWrite(c, http.StatusOK, "Category updated successfully", fmt.Sprintf("/categories/%d", id), updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete category ID %d: %v", id, err)
		respondError(c, "Failed to delete category", err, nil)
		return
	}

	h.log.Infof("Category deleted successfully: ID %d", id)
	respondWrite(c, http.StatusOK, "Category deleted successfully", "/categories", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list categories", err, nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}
