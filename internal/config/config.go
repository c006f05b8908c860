// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for all databases (always absolute)
	Port            int
	DevMode         bool
	LogLevel        string
	CoinGeckoAPIKey string // Optional demo/pro API key for CoinGecko
	RecallAPIKey    string // Bearer token for the Recall sandbox API
	RecallAPIURL    string

	StopLoss StopLossConfig

	RebalanceSchedule   string // Cron spec for the recurring rebalance job
	DailySchedule       string // Cron spec for the daily rebalance run
	MaintenanceSchedule string // Cron spec for cache/history cleanup
}

// StopLossConfig holds stop-loss behaviour configuration
type StopLossConfig struct {
	Enabled      bool
	Threshold    float64       // Loss fraction that triggers a full-position sell
	MaxDailyLoss float64       // Per-symbol accumulated loss fraction per calendar day
	Cooldown     time.Duration // Minimum time between triggers for the same symbol
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DRIFTGUARD_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("DRIFTGUARD_PORT", 8010),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),
		RecallAPIKey:    getEnv("RECALL_API_KEY", ""),
		RecallAPIURL:    getEnv("RECALL_API_URL", "https://api.sandbox.competitions.recall.network"),
		StopLoss: StopLossConfig{
			Enabled:      getEnvAsBool("STOP_LOSS_ENABLED", true),
			Threshold:    getEnvAsFloat("STOP_LOSS_THRESHOLD", 0.15),
			MaxDailyLoss: getEnvAsFloat("STOP_LOSS_MAX_DAILY", 0.25),
			Cooldown:     time.Duration(getEnvAsInt("STOP_LOSS_COOLDOWN_HOURS", 24)) * time.Hour,
		},
		RebalanceSchedule:   getEnv("REBALANCE_SCHEDULE", "0 0 */4 * * *"), // Every 4 hours
		DailySchedule:       getEnv("DAILY_REBALANCE_SCHEDULE", "0 0 9 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 30 2 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.StopLoss.Threshold <= 0 || c.StopLoss.Threshold >= 1 {
		return fmt.Errorf("stop-loss threshold must be in (0, 1), got %f", c.StopLoss.Threshold)
	}
	if c.StopLoss.MaxDailyLoss <= 0 {
		return fmt.Errorf("stop-loss max daily loss must be positive, got %f", c.StopLoss.MaxDailyLoss)
	}

	// Note: Recall credentials optional - without a key the engine runs in
	// preview mode and trades are never submitted.
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
