package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	// Glance gateway access. Both are required; without them there is
	// nothing to drive.
	GlanceBaseURL  string `env:"GLANCE_BASE_URL"`
	GlanceAPIToken string `env:"GLANCE_API_TOKEN"`

	GlanceCapabilityTTL time.Duration `env:"GLANCE_CAPABILITY_TTL" default:"10s"`
	StatsWindow         time.Duration `env:"STATS_WINDOW" default:"60s"`

	// GlanceDismissalPolicy selects how the surface disappears when a
	// session ends: "immediate" removes it right away, "default" leaves
	// the decision to the host.
	GlanceDismissalPolicy string `env:"GLANCE_DISMISSAL_POLICY" default:"immediate"`

	// RedisURL is optional. When empty the reading window lives in memory.
	RedisURL string `env:"REDIS_URL"`

	// DatabaseURL is optional. When empty the session journal is disabled.
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	MaxWebSocketConnections int `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"GLANCE_BASE_URL":  cfg.GlanceBaseURL,
		"GLANCE_API_TOKEN": cfg.GlanceAPIToken,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, err := url.ParseRequestURI(cfg.GlanceBaseURL); err != nil {
		return fmt.Errorf("GLANCE_BASE_URL must be a valid URL: %w", err)
	}

	switch cfg.GlanceDismissalPolicy {
	case "immediate", "default":
	default:
		return fmt.Errorf("GLANCE_DISMISSAL_POLICY must be \"immediate\" or \"default\", got %q", cfg.GlanceDismissalPolicy)
	}

	if cfg.StatsWindow <= 0 {
		return fmt.Errorf("STATS_WINDOW must be positive, got %s", cfg.StatsWindow)
	}
	if cfg.GlanceCapabilityTTL <= 0 {
		return fmt.Errorf("GLANCE_CAPABILITY_TTL must be positive, got %s", cfg.GlanceCapabilityTTL)
	}

	if cfg.AppEnv == "production" && cfg.DatabaseURL != "" {
		lowered := strings.ToLower(cfg.DatabaseURL)
		for _, insecure := range []string{"sslmode=disable", "sslmode=allow"} {
			if strings.Contains(lowered, insecure) {
				return fmt.Errorf("DATABASE_URL uses %s which is not allowed in production", insecure)
			}
		}
	}

	return nil
}
