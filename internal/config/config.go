package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	UIOrigin    string // UI_ORIGIN: CORS allow-origin for the frontend; empty allows any
	DryRun      bool   // DRY_RUN: skip mutating vendor calls, return synthetic ids
	Lightspeed  LightspeedConfig
	Store       StoreConfig
	Secrets     SecretsConfig
}

// LightspeedConfig holds the vendor client settings that are not
// credentials (those come from the secret resolver at startup)
type LightspeedConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// StoreConfig selects the catalog store backend
type StoreConfig struct {
	Backend  string // "file" or "mongo"
	DataDir  string // file backend: directory for catalog.json / meta.json
	MongoURI string
	MongoDB  string
}

// SecretsConfig selects the secret resolver backend
type SecretsConfig struct {
	Dir string // SECRETS_DIR: mounted secret files; empty means env only
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DRY_RUN", "false")
	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("LS_TIMEOUT_SECONDS", "120")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout := viper.GetInt("LS_TIMEOUT_SECONDS")
	if timeout <= 0 {
		timeout = 120
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		UIOrigin:    strings.TrimSpace(getEnvOrViper("UI_ORIGIN", "")),
		DryRun:      parseBool(getEnvOrViper("DRY_RUN", "false")),
		Lightspeed: LightspeedConfig{
			UserAgent: getEnvOrViper("LS_USER_AGENT", "bwp-inventory/1.0 (faire-lightspeed-lite)"),
			Timeout:   time.Duration(timeout) * time.Second,
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnvOrViper("STORE_BACKEND", "file")),
			DataDir:  getEnvOrViper("DATA_DIR", "data"),
			MongoURI: strings.TrimSpace(getEnvOrViper("MONGO_URI", "")),
			MongoDB:  getEnvOrViper("MONGO_DB", "faire_lightspeed"),
		},
		Secrets: SecretsConfig{
			Dir: strings.TrimSpace(getEnvOrViper("SECRETS_DIR", "")),
		},
	}

	// Validate required fields
	if cfg.Store.Backend != "file" && cfg.Store.Backend != "mongo" {
		return nil, fmt.Errorf("STORE_BACKEND must be \"file\" or \"mongo\", got %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "mongo" && cfg.Store.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
