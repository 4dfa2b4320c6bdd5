package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

type Config struct {
	// Server
	Port        int       `envconfig:"PORT" default:"7860"`
	Environment string    `envconfig:"ENV" default:"development"`
	Share       ShareFlag `envconfig:"SHARE" default:"0"`
	MaxUploadMB int       `envconfig:"MAX_UPLOAD_MB" default:"32"`
	Language    string    `envconfig:"LANGUAGE" default:"zh-Hant"`
	// Per-client requests per minute on prediction and dataset routes, 0 disables
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	// Dataset
	PhotoFolder string `envconfig:"PHOTO_FOLDER" default:"photos"`
	ImportDir   string `envconfig:"IMPORT_DIR"`
	// YAML member list replacing the built-in one
	MembersFile string `envconfig:"MEMBERS_FILE"`

	// Recognizer
	Recognizer          string  `envconfig:"RECOGNIZER" default:"lbph"`
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0"`
	DeepFaceURL         string  `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel       string  `envconfig:"DEEPFACE_MODEL" default:"Facenet512"`

	// Round history (optional)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	root, err := filepath.Abs(cfg.PhotoFolder)
	if err != nil {
		return nil, fmt.Errorf("resolve photo folder %q: %w", cfg.PhotoFolder, err)
	}
	cfg.PhotoFolder = root

	if cfg.ImportDir == "" {
		cfg.ImportDir = os.TempDir()
	}

	if cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("load config: RATE_LIMIT_PER_MINUTE must not be negative, got %d", cfg.RateLimitPerMinute)
	}

	if cfg.ConfidenceThreshold < 0 {
		return nil, fmt.Errorf("load config: CONFIDENCE_THRESHOLD must not be negative, got %v", cfg.ConfidenceThreshold)
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ListenAddr binds every interface when the app is shared publicly, loopback otherwise
func (c *Config) ListenAddr() string {
	host := "127.0.0.1"
	if c.Share.Enabled() {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// Threshold returns the configured confidence ceiling, or fallback when unset.
// The right value depends on the recognizer backend.
func (c *Config) Threshold(fallback float64) float64 {
	if c.ConfidenceThreshold > 0 {
		return c.ConfidenceThreshold
	}
	return fallback
}

// Registry loads MembersFile when set, the built-in member list otherwise
func (c *Config) Registry() (*domain.Registry, error) {
	if c.MembersFile == "" {
		return domain.DefaultRegistry(), nil
	}
	return domain.LoadRegistry(c.MembersFile)
}

func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// ShareFlag is a boolean-like switch: anything except "0", "false" and "False" enables it
type ShareFlag bool

func (s *ShareFlag) Decode(value string) error {
	switch value {
	case "0", "false", "False":
		*s = false
	default:
		*s = true
	}
	return nil
}

func (s ShareFlag) Enabled() bool {
	return bool(s)
}
