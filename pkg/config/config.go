package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional; persistence is disabled when URL is empty)
	Database DatabaseConfig

	// SEC EDGAR access
	SEC SECConfig

	// Rule table
	RulesPath string

	// Engine
	IdentityTolerance float64 // balance-sheet identity tolerance, absolute

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SECConfig holds SEC EDGAR configuration.
// The SEC requires a descriptive User-Agent with contact information and
// caps automated traffic at 10 requests per second.
type SECConfig struct {
	UserAgent       string
	BaseURL         string
	RequestsPerSec  float64
	CacheDir        string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
}

// SchedulerConfig holds background refresh configuration
type SchedulerConfig struct {
	Enabled  bool
	Schedule string   // cron expression, e.g. "0 0 6 * * *"
	Tickers  []string // tracked tickers, comma separated in env
	Form     string
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8085"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		SEC: SECConfig{
			UserAgent:       getEnv("SEC_USER_AGENT", ""),
			BaseURL:         getEnv("SEC_BASE_URL", "https://www.sec.gov"),
			RequestsPerSec:  getEnvAsFloat("SEC_REQUESTS_PER_SEC", 8),
			CacheDir:        getEnv("SEC_CACHE_DIR", ".cache"),
			RequestTimeout:  getEnvAsDuration("SEC_REQUEST_TIMEOUT", "30s"),
			DownloadTimeout: getEnvAsDuration("SEC_DOWNLOAD_TIMEOUT", "90s"),
		},

		RulesPath: getEnv("RULES_PATH", "config/rules.hjson"),

		IdentityTolerance: getEnvAsFloat("IDENTITY_TOLERANCE", 1.0),

		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("SCHEDULER_ENABLED", false),
			Schedule: getEnv("SCHEDULER_CRON", "0 0 6 * * *"),
			Tickers:  splitList(getEnv("SCHEDULER_TICKERS", "")),
			Form:     getEnv("SCHEDULER_FORM", "10-K"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.IdentityTolerance < 0 {
		return fmt.Errorf("IDENTITY_TOLERANCE must be >= 0")
	}

	if c.SEC.RequestsPerSec <= 0 || c.SEC.RequestsPerSec > 10 {
		return fmt.Errorf("SEC_REQUESTS_PER_SEC must be in (0, 10]")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
