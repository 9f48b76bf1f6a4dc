// Package config loads relay settings from the environment and validates
// them at startup. Malformed numeric values fall back to defaults; values
// outside their documented ranges fail Load.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
)

type Config struct {
	// Gemini configuration
	GoogleAPIKey string
	ModelName    string
	Temperature  float64
	MaxTokens    int

	// Server configuration
	Host string
	Port int

	// CORS configuration
	CORSOrigins []string

	// Logging configuration
	LogLevel string
	LogFile  string

	// Tool bridge configuration
	EnableTools    bool
	KitCallTimeout time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		ModelName:    getEnv("MODEL_NAME", "gemini-2.0-flash-exp"),
		Temperature:  getFloatEnv("TEMPERATURE", 0.7),
		MaxTokens:    getIntEnv("MAX_TOKENS", 2048),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getIntEnv("PORT", 8000),

		CORSOrigins: getListEnv("CORS_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		EnableTools:    getBoolEnv("ENABLE_TOOLS", false),
		KitCallTimeout: getDurationEnv("KIT_CALL_TIMEOUT", 30*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("config: GOOGLE_API_KEY is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: TEMPERATURE must be in [0, 2], got %g", c.Temperature)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 8192 {
		return fmt.Errorf("config: MAX_TOKENS must be in [1, 8192], got %d", c.MaxTokens)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be in [1, 65535], got %d", c.Port)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Level returns the parsed log level. Load already validated it.
func (c *Config) Level() log.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv accepts either a JSON array or a comma-separated list.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if strings.HasPrefix(strings.TrimSpace(value), "[") {
		var list []string
		if err := json.Unmarshal([]byte(value), &list); err == nil {
			return list
		}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
