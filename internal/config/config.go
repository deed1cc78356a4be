package config

import (
	"fmt"
	"log"

	"strings"
	"time"

	"github.com/spf13/viper"

	"pictor/pkg/logger"
)

var AppConfig *Config

func (c *Config) GetBaseUrl() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// MockOracle reports whether the server runs without a real vision model.
func (c *Config) MockOracle() bool {
	return c.Oracle.GeminiAPIKey == ""
}

func Load() {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PICTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.path", "PICTOR_DATABASE_PATH")

	v.BindEnv("storage.uploads_dir", "PICTOR_UPLOADS_DIR")

	v.BindEnv("storage.backups_dir", "PICTOR_BACKUPS_DIR")

	v.BindEnv("security.secret_key", "PICTOR_SECRET_KEY")

	v.BindEnv("oracle.gemini_api_key", "GEMINI_API_KEY")

	v.BindEnv("server.port", "APP_PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.LogInfo("Config file not found. Using Environment Variables and Defaults.")
		} else {
			logger.LogWarn("Config file found but unreadable: %v", err)
		}
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("[CRITICAL] Error: Failed to parse configuration: %v", err)
	}

	AppConfig.BaseURL = AppConfig.GetBaseUrl()

	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("[FATAL] CONFIGURATION ERROR: %v", err)
	}

	logger.LogInfo("⚙️  %s v%s Initialized | Env: %s | Port: %d",
		AppConfig.App.Name,
		AppConfig.App.Version,
		AppConfig.Server.Env,
		AppConfig.Server.Port,
	)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "Pictor")
	v.SetDefault("app.version", "0.1.0")

	// Server
	v.SetDefault("server.port", 9980)
	v.SetDefault("server.env", "development")

	// Database
	v.SetDefault("database.path", "./data/pictor.db")
	v.SetDefault("database.clean_interval", "30m")

	// Storage
	v.SetDefault("storage.uploads_dir", "./data/uploads")
	v.SetDefault("storage.backups_dir", "./data/backups")
	v.SetDefault("storage.exports_dir", "./data/exports")

	// Image Engine
	v.SetDefault("image.thumbnail_size", 300)
	v.SetDefault("image.max_upload_size", "10MB")
	v.SetDefault("image.max_batch_count", 10)

	// Vision Oracle
	v.SetDefault("oracle.model", "gemini-1.5-flash")
	v.SetDefault("oracle.timeout", "30s")
	v.SetDefault("oracle.placeholder_on_failure", true)

	// Caching
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_capacity", 100) // 100 MB
	v.SetDefault("cache.ttl", "30m")

	// Security & Limits
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)
}

func (c *Config) Validate() error {
	// Security: Secret Key Check
	if c.Security.SecretKey == "" || c.Security.SecretKey == "secret" {
		if c.Server.Env == "production" {
			return fmt.Errorf("security.secret_key cannot be default or empty in production environment")
		}
		logger.LogWarn("Security Alert: Write endpoints are unprotected. Do not use this in production!")
	}

	// Cache: TTL Parsing Check
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache.ttl format '%s': %v", c.Cache.TTL, err)
	}

	// RateLimit: Window Parsing Check
	if _, err := time.ParseDuration(c.Security.RateLimit.Window); err != nil {
		return fmt.Errorf("invalid rate_limit.window format '%s': %v", c.Security.RateLimit.Window, err)
	}

	// Oracle: Timeout Parsing Check
	if _, err := time.ParseDuration(c.Oracle.Timeout); err != nil {
		return fmt.Errorf("invalid oracle.timeout format '%s': %v", c.Oracle.Timeout, err)
	}

	if c.Image.MaxBatchCount <= 0 {
		return fmt.Errorf("image.max_batch_count must be positive, got %d", c.Image.MaxBatchCount)
	}

	if c.MockOracle() {
		logger.LogWarn("No GEMINI_API_KEY set. Vision analysis runs in mock mode.")
	}

	return nil
}
