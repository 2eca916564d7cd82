package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "MAX_UPLOAD_MB",
	"RATE_LIMIT_PER_MINUTE", "CORS_ALLOW_ORIGINS", "PDF_BACKEND", "EXTRACT_TIMEOUT",
	"PREVIEW_CHARS", "CARD_LAST4_STRICT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads; empty values count as unset and
// keep a stray .env file from filling them in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 20, cfg.Server.MaxUploadMB)
	assert.Equal(t, 20*1024*1024, cfg.Server.BodyLimit())
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "*", cfg.Server.CORSAllowOrigins)
	assert.Equal(t, BackendFitz, cfg.PDF.Backend)
	assert.Equal(t, 30*time.Second, cfg.PDF.ExtractTimeout)
	assert.Equal(t, 1000, cfg.Extract.PreviewChars)
	assert.False(t, cfg.Extract.CardLast4Strict)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("PDF_BACKEND", "PURE")
	t.Setenv("EXTRACT_TIMEOUT", "3")
	t.Setenv("PREVIEW_CHARS", "200")
	t.Setenv("CARD_LAST4_STRICT", "true")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*1024*1024, cfg.Server.BodyLimit())
	assert.Zero(t, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, BackendPure, cfg.PDF.Backend)
	assert.Equal(t, 3*time.Second, cfg.PDF.ExtractTimeout)
	assert.Equal(t, 200, cfg.Extract.PreviewChars)
	assert.True(t, cfg.Extract.CardLast4Strict)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "lots")
	t.Setenv("CARD_LAST4_STRICT", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Server.MaxUploadMB)
	assert.False(t, cfg.Extract.CardLast4Strict)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown backend", "PDF_BACKEND", "poppler", `unsupported PDF_BACKEND "poppler"`},
		{"zero upload", "MAX_UPLOAD_MB", "0", "MAX_UPLOAD_MB must be positive"},
		{"negative rate limit", "RATE_LIMIT_PER_MINUTE", "-1", "RATE_LIMIT_PER_MINUTE must not be negative"},
		{"zero timeout", "EXTRACT_TIMEOUT", "0", "EXTRACT_TIMEOUT must be positive"},
		{"zero preview", "PREVIEW_CHARS", "0", "PREVIEW_CHARS must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
