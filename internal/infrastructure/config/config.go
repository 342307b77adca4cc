// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Values missing from the file keep their defaults.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	engine := reconcile.NewEngine(cfg.Matching.EngineConfig())
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	OCR           OCRConfig           `yaml:"ocr"`
	API           APIConfig           `yaml:"api"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds the reconciliation engine knobs
type MatchingConfig struct {
	NameMatchThreshold   int   `yaml:"name_match_threshold"`
	AmountTolerance      int64 `yaml:"amount_tolerance"`
	MaxCombinationSize   int   `yaml:"max_combination_size"`
	MaxCombinationChecks int   `yaml:"max_combination_checks"`
	MinAcceptedAmount    int64 `yaml:"min_accepted_amount"`
	MaxAcceptedAmount    int64 `yaml:"max_accepted_amount"`
	MinNameLength        int   `yaml:"min_name_length"`
	MaxMaskedRunes       int   `yaml:"max_masked_runes"`
}

// OCRConfig selects and configures the text extractor used for images
type OCRConfig struct {
	Provider  string          `yaml:"provider"` // "clova", "inference" or "" (disabled)
	Clova     ClovaConfig     `yaml:"clova"`
	Inference InferenceConfig `yaml:"inference"`
	Timeout   time.Duration   `yaml:"timeout"`
	RetryMax  int             `yaml:"retry_max"`
	CacheSize int             `yaml:"cache_size"` // 0 disables the cache
}

// ClovaConfig holds CLOVA OCR settings
type ClovaConfig struct {
	InvokeURL string `yaml:"invoke_url"`
	SecretKey string `yaml:"secret_key"`
}

// InferenceConfig holds settings for the document-understanding service
type InferenceConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"` // reconcile requests per second, 0 disables
	RateBurst      int      `yaml:"rate_burst"`
}

// ReconcileConfig holds application-level reconciliation settings
type ReconcileConfig struct {
	BatchConcurrency int  `yaml:"batch_concurrency"`
	UnpaidOnly       bool `yaml:"unpaid_only"` // skip students already paid this month
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" (Maven-style) or "json"
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	engine := reconcile.DefaultConfig()
	return &Config{
		Storage: StorageConfig{
			DatabasePath: "reconciler.db",
		},
		Matching: MatchingConfig{
			NameMatchThreshold:   engine.NameMatchThreshold,
			AmountTolerance:      engine.AmountTolerance,
			MaxCombinationSize:   engine.MaxCombinationSize,
			MaxCombinationChecks: engine.MaxCombinationChecks,
			MinAcceptedAmount:    engine.MinAcceptedAmount,
			MaxAcceptedAmount:    engine.MaxAcceptedAmount,
			MinNameLength:        engine.MinNameLength,
			MaxMaskedRunes:       engine.MaxMaskedRunes,
		},
		OCR: OCRConfig{
			Timeout:   30 * time.Second,
			RetryMax:  3,
			CacheSize: 128,
		},
		API: APIConfig{
			Port:           8085,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:      5,
			RateBurst:      10,
		},
		Reconcile: ReconcileConfig{
			BatchConcurrency: 4,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// EngineConfig converts the matching section for the engine
func (m MatchingConfig) EngineConfig() reconcile.Config {
	return reconcile.Config{
		NameMatchThreshold:   m.NameMatchThreshold,
		AmountTolerance:      m.AmountTolerance,
		MaxCombinationSize:   m.MaxCombinationSize,
		MaxCombinationChecks: m.MaxCombinationChecks,
		MinAcceptedAmount:    m.MinAcceptedAmount,
		MaxAcceptedAmount:    m.MaxAcceptedAmount,
		MinNameLength:        m.MinNameLength,
		MaxMaskedRunes:       m.MaxMaskedRunes,
	}
}

// Validate checks the settings that would otherwise fail at first use
func (c *Config) Validate() error {
	if err := c.Matching.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	switch c.OCR.Provider {
	case "":
	case "clova":
		if c.OCR.Clova.InvokeURL == "" {
			return fmt.Errorf("ocr: clova.invoke_url is required")
		}
	case "inference":
		if c.OCR.Inference.URL == "" {
			return fmt.Errorf("ocr: inference.url is required")
		}
	default:
		return fmt.Errorf("ocr: unknown provider %q", c.OCR.Provider)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api: invalid port %d", c.API.Port)
	}
	if c.Reconcile.BatchConcurrency < 1 {
		return fmt.Errorf("reconcile: batch_concurrency must be at least 1")
	}
	return nil
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${CLOVA_SECRET})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Storage.DatabasePath = getEnv("RECONCILER_DB_PATH", cfg.Storage.DatabasePath)

	cfg.Matching.NameMatchThreshold = getEnvInt("NAME_MATCH_THRESHOLD", cfg.Matching.NameMatchThreshold)
	cfg.Matching.AmountTolerance = int64(getEnvInt("AMOUNT_TOLERANCE", int(cfg.Matching.AmountTolerance)))
	cfg.Matching.MaxCombinationSize = getEnvInt("MAX_COMBINATION_SIZE", cfg.Matching.MaxCombinationSize)
	cfg.Matching.MinAcceptedAmount = int64(getEnvInt("MIN_ACCEPTED_AMOUNT", int(cfg.Matching.MinAcceptedAmount)))
	cfg.Matching.MaxAcceptedAmount = int64(getEnvInt("MAX_ACCEPTED_AMOUNT", int(cfg.Matching.MaxAcceptedAmount)))

	cfg.OCR.Provider = getEnv("OCR_PROVIDER", cfg.OCR.Provider)
	cfg.OCR.Clova.InvokeURL = os.Getenv("CLOVA_INVOKE_URL")
	cfg.OCR.Clova.SecretKey = os.Getenv("CLOVA_SECRET_KEY")
	cfg.OCR.Inference.URL = os.Getenv("INFERENCE_URL")
	cfg.OCR.Inference.APIKey = os.Getenv("INFERENCE_API_KEY")

	cfg.API.Port = getEnvInt("API_PORT", cfg.API.Port)
	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Reconcile.BatchConcurrency = getEnvInt("BATCH_CONCURRENCY", cfg.Reconcile.BatchConcurrency)
	cfg.Reconcile.UnpaidOnly = os.Getenv("UNPAID_ONLY") == "true"

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// GetAPIKey retrieves a secret from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.OCR.Clova.SecretKey, "CLOVA_SECRET_KEY", "X_OCR_SECRET")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	if configValue != "" {
		return configValue
	}

	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
