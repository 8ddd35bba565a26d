package delivery

import (
	"context"
	"net/http"

	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker func(ctx context.Context) error

type HomeHandler struct {
	useCase usecase.DashboardUseCase
	health  HealthChecker
	log     *logrus.Logger
}

func NewHomeHandler(uc usecase.DashboardUseCase, health HealthChecker, logger *logrus.Logger) *HomeHandler {
	return &HomeHandler{
		useCase: uc,
		health:  health,
		log:     logger,
	}
}

func (h *HomeHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Dashboard)
	router.GET("/healthz", h.Health)
}

func (h *HomeHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.useCase.Dashboard(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to build dashboard: %v", err)
		respondError(c, "Failed to build dashboard", err, nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *HomeHandler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.log.Warnf("Health check failed: %v", err)
			ErrorResponse(c, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	SuccessResponse(c, http.StatusOK, "ok", nil)
}
