package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adkchat/relay/config"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GoogleAPIKey)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.ModelName)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:*", "http://127.0.0.1:*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.False(t, cfg.EnableTools)
	assert.Equal(t, 30*time.Second, cfg.KitCallTimeout)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MODEL_NAME", "gemini-2.0-pro")
	t.Setenv("TEMPERATURE", "1.5")
	t.Setenv("MAX_TOKENS", "4096")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/relay.log")
	t.Setenv("ENABLE_TOOLS", "true")
	t.Setenv("KIT_CALL_TIMEOUT", "45s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-pro", cfg.ModelName)
	assert.Equal(t, 1.5, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/relay.log", cfg.LogFile)
	assert.True(t, cfg.EnableTools)
	assert.Equal(t, 45*time.Second, cfg.KitCallTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestLoad_CORSOriginsJSON(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", `["http://localhost:3000","http://example.com"]`)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.CORSOrigins)
}

func TestLoad_CORSOriginsCommaSeparated(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.CORSOrigins)
}

func TestLoad_TemperatureOutOfRange(t *testing.T) {
	setRequired(t)
	t.Setenv("TEMPERATURE", "3.5")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMPERATURE")
}

func TestLoad_MaxTokensOutOfRange(t *testing.T) {
	setRequired(t)

	t.Run("zero", func(t *testing.T) {
		t.Setenv("MAX_TOKENS", "0")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("above limit", func(t *testing.T) {
		t.Setenv("MAX_TOKENS", "8193")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestLoad_PortOutOfRange(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "70000")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_MalformedNumberFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("TEMPERATURE", "not-a-number")
	t.Setenv("MAX_TOKENS", "also-not")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 2048, cfg.MaxTokens)
}

func TestConfig_Level(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Level().String())
}
