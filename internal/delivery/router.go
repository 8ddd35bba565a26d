package delivery

import (
	"github.com/agassama1998/materialmanagementapp/internal/metrics"
	"github.com/agassama1998/materialmanagementapp/internal/middleware"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Auth       usecase.AuthUseCase
	Categories usecase.CategoryUseCase
	Materials  usecase.MaterialUseCase
	Dashboard  usecase.DashboardUseCase
	Health     HealthChecker

	Metrics      *metrics.Metrics
	CORSOrigins  []string
	CookieSecure bool
	Log          *logrus.Logger
}

// NewRouter assembles the middleware chain and every route group.
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.CORSOrigins),
		middleware.Authenticate(d.Auth, d.CookieSecure, d.Log),
		middleware.CSRF(d.Log),
	)

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	NewHomeHandler(d.Dashboard, d.Health, d.Log).RegisterRoutes(router)
	NewAuthHandler(d.Auth, d.CookieSecure, d.Log).RegisterRoutes(router)
	NewCategoryHandler(d.Categories, d.Log).RegisterRoutes(router)
	NewMaterialHandler(d.Materials, d.Log).RegisterRoutes(router)

	return router
}
