package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/quickpaste/quickpaste/internal/slug"
)

// Config holds all configuration for the quickpaste service
type Config struct {
	Port               int           `json:"port"`
	BaseURL            string        `json:"base_url"`
	DataDir            string        `json:"data_dir"`
	MaxSize            int64         `json:"max_size"`
	DefaultExpiryHours int           `json:"default_expiry_hours"`
	SlugLength         int           `json:"slug_length"`
	SweepInterval      time.Duration `json:"sweep_interval"`
	S3Bucket           string        `json:"s3_bucket"`
	S3Prefix           string        `json:"s3_prefix"`
	EnableMetrics      bool          `json:"enable_metrics"`
	Version            string        `json:"version"`
	BuildTime          string        `json:"build_time"`
	CommitHash         string        `json:"commit_hash"`
}

// LoadConfig loads configuration from a .env file (if present), CLI
// flags, and environment variables. Environment variables win over
// flags, matching how the service is deployed in containers.
func LoadConfig() *Config {
	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	config := &Config{
		Port:               8084,
		BaseURL:            "http://localhost:8084",
		DataDir:            "./data",
		MaxSize:            500_000,
		DefaultExpiryHours: 24 * 7,
		SlugLength:         8,
		SweepInterval:      time.Hour,
		EnableMetrics:      true,
	}

	flag.IntVar(&config.Port, "port", config.Port, "Port to listen on")
	flag.StringVar(&config.BaseURL, "base-url", config.BaseURL, "Public base URL for paste links")
	flag.StringVar(&config.DataDir, "data-dir", config.DataDir, "Directory for the index snapshot and content files")
	flag.Int64Var(&config.MaxSize, "max-size", config.MaxSize, "Maximum paste size in bytes")
	flag.IntVar(&config.DefaultExpiryHours, "expiry-hours", config.DefaultExpiryHours, "Default paste expiry in hours (0 = never)")
	flag.IntVar(&config.SlugLength, "slug-length", config.SlugLength, "Length of generated paste ids")
	flag.DurationVar(&config.SweepInterval, "sweep-interval", config.SweepInterval, "Interval between expiry sweeps (0 = startup sweep only)")
	flag.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket for content storage (empty = filesystem)")
	flag.StringVar(&config.S3Prefix, "s3-prefix", config.S3Prefix, "S3 key prefix for content objects")
	flag.BoolVar(&config.EnableMetrics, "enable-metrics", config.EnableMetrics, "Expose Prometheus metrics on /metrics")
	flag.Parse()

	ApplyEnv(config)
	return config
}

// ApplyEnv overrides config fields from PASTE_* environment variables.
func ApplyEnv(config *Config) {
	if val := os.Getenv("PASTE_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Port = port
		}
	}
	if val := os.Getenv("PASTE_BASE_URL"); val != "" {
		config.BaseURL = val
	}
	if val := os.Getenv("PASTE_DATA_DIR"); val != "" {
		config.DataDir = val
	}
	if val := os.Getenv("PASTE_MAX_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.MaxSize = size
		}
	}
	if val := os.Getenv("PASTE_EXPIRY_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil {
			config.DefaultExpiryHours = hours
		}
	}
	if val := os.Getenv("PASTE_SLUG_LENGTH"); val != "" {
		if length, err := strconv.Atoi(val); err == nil {
			config.SlugLength = length
		}
	}
	if val := os.Getenv("PASTE_SWEEP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.SweepInterval = d
		}
	}
	if val := os.Getenv("PASTE_S3_BUCKET"); val != "" {
		config.S3Bucket = val
	}
	if val := os.Getenv("PASTE_S3_PREFIX"); val != "" {
		config.S3Prefix = val
	}
	if val := os.Getenv("PASTE_ENABLE_METRICS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.EnableMetrics = b
		}
	}
}

// Validate reports configuration values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max paste size must be positive, got %d", c.MaxSize)
	}
	if c.SlugLength < slug.MinLength || c.SlugLength > slug.MaxLength {
		return fmt.Errorf("slug length must be between %d and %d, got %d",
			slug.MinLength, slug.MaxLength, c.SlugLength)
	}
	return nil
}

// PasteURL returns the absolute view URL for a paste id.
func (c *Config) PasteURL(id string) string {
	return fmt.Sprintf("%s/%s", c.BaseURL, id)
}

// RawURL returns the absolute raw-content URL for a paste id.
func (c *Config) RawURL(id string) string {
	return fmt.Sprintf("%s/%s/raw", c.BaseURL, id)
}
