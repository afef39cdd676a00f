// Package config loads runtime settings from defaults, an optional YAML
// file and PROCONNECT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DevSessionSecret is used when no secret is configured. It is long enough
// to pass validation and is not meant to protect anything.
const DevSessionSecret = "proconnect-local-development-secret-key"

type Config struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// SessionSecret signs the persisted session token.
	SessionSecret string        `yaml:"session_secret" validate:"min=32"`
	SessionTTL    time.Duration `yaml:"session_ttl" validate:"gte=0"`
	BcryptCost    int           `yaml:"bcrypt_cost" validate:"gte=4,lte=14"`

	// LoginRate is the refill rate (attempts per second) of the per-email
	// login throttle; LoginBurst is its capacity.
	LoginRate  float64 `yaml:"login_rate" validate:"gte=0"`
	LoginBurst float64 `yaml:"login_burst" validate:"gte=1"`

	// StorageFailureThreshold is the number of consecutive storage write
	// failures after which the stores stop persisting for the rest of the
	// process.
	StorageFailureThreshold uint32 `yaml:"storage_failure_threshold" validate:"gte=1"`

	// DemoSeed re-seeds demo posts, jobs and notifications whenever the
	// active identity changes.
	DemoSeed bool `yaml:"demo_seed"`

	MetricsNamespace string `yaml:"metrics_namespace" validate:"required,alphanum"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatabasePath:            "proconnect.db",
		LogLevel:                "info",
		SessionSecret:           DevSessionSecret,
		SessionTTL:              30 * 24 * time.Hour,
		BcryptCost:              12,
		LoginRate:               0.2,
		LoginBurst:              5,
		StorageFailureThreshold: 1,
		MetricsNamespace:        "proconnect",
	}
}

// Load builds the configuration. path may be empty, in which case no file
// is read. A missing file at a non-empty path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == DevSessionSecret {
		slog.Warn("using development session secret; set PROCONNECT_SESSION_SECRET")
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PROCONNECT_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("PROCONNECT_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PROCONNECT_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("PROCONNECT_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("PROCONNECT_BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	if v := os.Getenv("PROCONNECT_LOGIN_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_LOGIN_RATE: %w", err)
		}
		c.LoginRate = f
	}
	if v := os.Getenv("PROCONNECT_LOGIN_BURST"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_LOGIN_BURST: %w", err)
		}
		c.LoginBurst = f
	}
	if v := os.Getenv("PROCONNECT_STORAGE_FAILURE_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_STORAGE_FAILURE_THRESHOLD: %w", err)
		}
		c.StorageFailureThreshold = uint32(n)
	}
	if v := os.Getenv("PROCONNECT_DEMO_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PROCONNECT_DEMO_SEED: %w", err)
		}
		c.DemoSeed = b
	}
	return nil
}
