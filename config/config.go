package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort      string `envconfig:"HTTP_PORT"      default:":8081"`
	GrpcPort      string `envconfig:"GRPC_PORT"      default:""` // health service, disabled when empty
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	LogLevel      string `envconfig:"LOG_LEVEL"      default:"info"`

	MigrateOnStart bool `envconfig:"MIGRATE_ON_START" default:"true"`
	SeedEnabled    bool `envconfig:"SEED_ENABLED"     default:"true"`

	JWTSecret     string        `envconfig:"JWT_SECRET"     default:"change_me_in_production"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL"        default:"12h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE"  default:"false"`
	AdminEmail    string        `envconfig:"ADMIN_EMAIL"    default:"admin@inventory.local"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:"Admin123!"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	RedisURL         string        `envconfig:"REDIS_URL"`
	CategoryCacheTTL time.Duration `envconfig:"CATEGORY_CACHE_TTL" default:"5m"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"material-events"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Infof("Configuration loaded: HTTP Port=%s, Storage=%s, LogLevel=%s", cfg.HTTPPort, cfg.StorageDriver, cfg.LogLevel)
	if cfg.DatabaseURL != "" {
		logger.Info("Configuration loaded: DatabaseURL is set")
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("configuration error: DATABASE_URL is not set")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("configuration error: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("configuration error: JWT_SECRET is empty")
	}
	if c.JWTTTL <= 0 {
		return errors.New("configuration error: JWT_TTL must be positive")
	}
	return nil
}
