package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath   string
	ArtifactDir    string
	HistoryDir     string
	BackendName    string
	BackendVersion string
	BasisSet       string // named basis-gate set: "rxrxcz", "rrzrzz", or "" for the full default set
	CouplingRadius int    // 0 = fully connected
	MaxShots       int
	TZOffsetHours  int // timestamp zone for generated artifacts
	LogLevel       string
	Port           int
	DevMode        bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvAsInt("PORT", 8010),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/calibration.db"),
		ArtifactDir:    getEnv("ARTIFACT_DIR", "./data/artifacts"),
		HistoryDir:     getEnv("HISTORY_DIR", "./data/history"),
		BackendName:    getEnv("BACKEND_NAME", "huayi"),
		BackendVersion: getEnv("BACKEND_VERSION", "1.0.0"),
		BasisSet:       getEnv("BASIS_SET", ""),
		CouplingRadius: getEnvAsInt("COUPLING_RADIUS", 0),
		MaxShots:       getEnvAsInt("MAX_SHOTS", 6000),
		TZOffsetHours:  getEnvAsInt("TZ_OFFSET_HOURS", 8),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ArtifactDir == "" {
		return fmt.Errorf("ARTIFACT_DIR is required")
	}
	if c.BackendName == "" {
		return fmt.Errorf("BACKEND_NAME is required")
	}
	if c.MaxShots < 1 {
		return fmt.Errorf("MAX_SHOTS must be positive")
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
