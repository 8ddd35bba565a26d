package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/export"
	"github.com/agassama1998/materialmanagementapp/internal/middleware"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// priceInput accepts unit_price as a JSON number or string so that
// malformed prices reach validation instead of failing the bind.
type priceInput string

func (p *priceInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*p = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = priceInput(s)
	default:
		*p = priceInput(raw)
	}
	return nil
}

type materialRequest struct {
	Name            string     `json:"name" form:"name"`
	Description     string     `json:"description" form:"description"`
	SKU             string     `json:"sku" form:"sku"`
	CategoryID      int64      `json:"category_id" form:"category_id"`
	Quantity        int        `json:"quantity" form:"quantity"`
	MinimumQuantity int        `json:"minimum_quantity" form:"minimum_quantity"`
	UnitPrice       priceInput `json:"unit_price" form:"unit_price"`
	Version         int64      `json:"version" form:"version"`
}

func (r materialRequest) toDomain() (*domain.Material, error) {
	price := decimal.Zero
	if raw := strings.TrimSpace(string(r.UnitPrice)); raw != "" {
		var err error
		price, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.NewFieldError("unit_price", "must be a decimal number")
		}
	}
	return &domain.Material{
		Name:            r.Name,
		Description:     r.Description,
		SKU:             r.SKU,
		CategoryID:      r.CategoryID,
		Quantity:        r.Quantity,
		MinimumQuantity: r.MinimumQuantity,
		UnitPrice:       price,
		Version:         r.Version,
	}, nil
}

type MaterialHandler struct {
	useCase usecase.MaterialUseCase
	log     *logrus.Logger
}

func NewMaterialHandler(uc usecase.MaterialUseCase, logger *logrus.Logger) *MaterialHandler {
	return &MaterialHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *MaterialHandler) RegisterRoutes(router gin.IRouter) {
	materials := router.Group("/materials", middleware.RequireAuth())
	{
		materials.GET("", h.ListMaterials)
		materials.GET("/export", h.ExportMaterials)
		materials.POST("", h.CreateMaterial)
		materials.GET("/:id", h.GetMaterialByID)

		admin := materials.Group("", middleware.RequireRole(domain.RoleAdmin))
		admin.PUT("/:id", h.UpdateMaterial)
		admin.POST("/:id", h.UpdateMaterial)
		admin.DELETE("/:id", h.DeleteMaterial)
		admin.POST("/:id/delete", h.DeleteMaterial)
	}
}

func filterFromQuery(c *gin.Context) (domain.MaterialFilter, error) {
	filter := domain.MaterialFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return filter, fmt.Errorf("category_id %q: %w", raw, domain.ErrInvalidID)
		}
		filter.CategoryID = id
	}
	return filter, nil
}

func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category_id filter")
		return
	}

	listing, err := h.useCase.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list materials", err, nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Materials retrieved successfully", listing)
}

func (h *MaterialHandler) ExportMaterials(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category_id filter")
		return
	}

	listing, err := h.useCase.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to export materials", err, nil)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMaterials(&buf, listing.Materials); err != nil {
		h.log.Errorf("Failed to render materials workbook: %v", err)
		respondError(c, "Failed to export materials", err, nil)
		return
	}

	fileName := fmt.Sprintf("materials_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req materialRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warnf("Failed to bind request for create material: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	material, err := req.toDomain()
	if err != nil {
		respondError(c, "Failed to create material", err, req)
		return
	}

	created, err := h.useCase.CreateMaterial(c.Request.Context(), material)
	if err != nil {
		h.log.Warnf("Failed to create material '%s': %v", req.SKU, err)
		respondError(c, "Failed to create material", err, req)
		return
	}

	h.log.Infof("Material created successfully: ID %d, SKU %s", created.ID, created.SKU)
	c.Header("ETag", etag(created.Version))
	respondWrite(c, http.StatusCreated, "Material created successfully", "/materials", created)
}

func (h *MaterialHandler) GetMaterialByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	material, err := h.useCase.GetMaterialByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to retrieve material", err, nil)
		return
	}

	c.Header("ETag", etag(material.Version))
	SuccessResponse(c, http.StatusOK, "Material retrieved successfully", material)
}

func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	var req materialRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warnf("Failed to bind request for update material ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	material, err := req.toDomain()
	if err != nil {
		respondError(c, "Failed to update material", err, req)
		return
	}
	version, err := expectedVersion(c, req.Version)
	if err != nil {
		respondError(c, "Failed to update material", err, req)
		return
	}
	material.ID = id
	material.Version = version

	updated, err := h.useCase.UpdateMaterial(c.Request.Context(), material)
	if err != nil {
		h.log.Warnf("Failed to update material ID %d: %v", id, err)
		respondError(c, "Failed to update material", err, req)
		return
	}

	h.log.Infof("Material updated successfully: ID %d", id)
	c.Header("ETag", etag(updated.Version))
	respondWrite(c, http.StatusOK, "Material updated successfully", fmt.Sprintf("/materials/%d", id), updated)
}

func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	if err := h.useCase.DeleteMaterial(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete material ID %d: %v", id, err)
		respondError(c, "Failed to delete material", err, nil)
		return
	}

	h.log.Infof("Material deleted successfully: ID %d", id)
	respondWrite(c, http.StatusOK, "Material deleted successfully", "/materials", nil)
}
