package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agassama1998/materialmanagementapp/config"
	"github.com/agassama1998/materialmanagementapp/internal/cache"
	"github.com/agassama1998/materialmanagementapp/internal/delivery"
	grpcHandler "github.com/agassama1998/materialmanagementapp/internal/delivery/grpc"
	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/events"
	"github.com/agassama1998/materialmanagementapp/internal/metrics"
	"github.com/agassama1998/materialmanagementapp/internal/repository"
	"github.com/agassama1998/materialmanagementapp/internal/repository/memory"
	"github.com/agassama1998/materialmanagementapp/internal/seed"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"
	"github.com/agassama1998/materialmanagementapp/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 5 * time.Second
	healthCheckInterval = 15 * time.Second
)

type stores struct {
	categories domain.CategoryRepository
	materials  domain.MaterialRepository
	users      domain.UserRepository
	roles      domain.RoleRepository
	ping       func(ctx context.Context) error
	close      func() error
}

func main() {
	logger := setupLogger("info")

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if logLevel, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logger.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
	} else {
		logger.SetLevel(logLevel)
	}
	logger.Info("Starting Material Management Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialise storage: %v", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Errorf("Error closing storage: %v", err)
		} else {
			logger.Info("Storage closed.")
		}
	}()

	if cfg.SeedEnabled {
		err := seed.Run(ctx, seed.Deps{
			Categories:    st.categories,
			Materials:     st.materials,
			Users:         st.users,
			Roles:         st.roles,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Log:           logger,
		})
		if err != nil {
			logger.Errorf("Seeding failed, continuing startup: %v", err)
		}
	}

	categoryCache := newCategoryCache(ctx, cfg, logger)
	defer categoryCache.Close()
	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// --- Dependency Injection ---
	authUseCase := usecase.NewAuthUseCase(st.users, cfg.JWTSecret, cfg.JWTTTL, logger)
	categoryUseCase := usecase.NewCategoryUseCase(st.categories, st.materials, categoryCache, logger)
	materialUseCase := usecase.NewMaterialUseCase(st.materials, categoryUseCase, categoryCache, publisher, m, logger)
	dashboardUseCase := usecase.NewDashboardUseCase(st.categories, st.materials, m, logger)
	logger.Info("Use cases initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.RouterDeps{
		Auth:         authUseCase,
		Categories:   categoryUseCase,
		Materials:    materialUseCase,
		Dashboard:    dashboardUseCase,
		Health:       st.ping,
		Metrics:      m,
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.CookieSecure,
		Log:          logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.GrpcPort != "" {
		healthServer := grpcHandler.NewHealthServer(st.ping, logger)
		lis, err := net.Listen("tcp", cfg.GrpcPort)
		if err != nil {
			logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
		}
		g.Go(func() error {
			logger.Infof("gRPC health server listening on %s", cfg.GrpcPort)
			return healthServer.Server().Serve(lis)
		})
		g.Go(func() error {
			healthServer.Watch(gctx, healthCheckInterval)
			healthServer.Shutdown()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorf("Server stopped with error: %v", err)
		return
	}
	logger.Info("Material Management Service shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		s := memory.NewStore()
		return &stores{
			categories: s.Categories(),
			materials:  s.Materials(),
			users:      s.Users(),
			roles:      s.Roles(),
			ping:       func(context.Context) error { return nil },
			close:      func() error { return nil },
		}, nil
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established.")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			_ = database.Close()
			return nil, err
		}
		logger.Info("Database migrations applied.")
	}

	return &stores{
		categories: repository.NewPostgresCategoryRepository(database, logger),
		materials:  repository.NewPostgresMaterialRepository(database, logger),
		users:      repository.NewPostgresUserRepository(database, logger),
		roles:      repository.NewPostgresRoleRepository(database, logger),
		ping:       pingDB(database),
		close:      database.Close,
	}, nil
}

func pingDB(database *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return database.PingContext(ctx)
	}
}

func newCategoryCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) cache.CategoryCache {
	if cfg.RedisURL == "" {
		return cache.NewNoop()
	}
	c, err := cache.NewRedisCategoryCache(ctx, cfg.RedisURL, cfg.CategoryCacheTTL, logger)
	if err != nil {
		logger.Warnf("Redis unavailable, category cache disabled: %v", err)
		return cache.NewNoop()
	}
	logger.Info("Category cache backed by Redis.")
	return c
}

func newPublisher(cfg *config.Config, logger *logrus.Logger) events.Publisher {
	if cfg.KafkaBrokers == "" {
		return events.NewNoop()
	}
	p, err := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Warnf("Kafka producer disabled: %v", err)
		return events.NewNoop()
	}
	logger.Infof("Material events published to Kafka topic %s", cfg.KafkaTopic)
	return p
}
