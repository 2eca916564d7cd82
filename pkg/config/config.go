package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	PDF     PDFConfig
	Extract ExtractConfig
	Logger  LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxUploadMB        int
	RateLimitPerMinute int
	CORSAllowOrigins   string
}

type PDFConfig struct {
	Backend        string // "fitz" (MuPDF, cgo) or "pure" (pure Go reader)
	ExtractTimeout time.Duration
}

type ExtractConfig struct {
	PreviewChars    int
	CardLast4Strict bool
}

const (
	BackendFitz = "fitz"
	BackendPure = "pure"
)

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "8080"),
			ReadTimeout:        time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:       time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 20),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			CORSAllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		PDF: PDFConfig{
			Backend:        strings.ToLower(getEnv("PDF_BACKEND", BackendFitz)),
			ExtractTimeout: time.Duration(getEnvAsInt("EXTRACT_TIMEOUT", 30)) * time.Second,
		},
		Extract: ExtractConfig{
			PreviewChars:    getEnvAsInt("PREVIEW_CHARS", 1000),
			CardLast4Strict: getEnvAsBool("CARD_LAST4_STRICT", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT must not be empty")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.Server.RateLimitPerMinute)
	}
	switch c.PDF.Backend {
	case BackendFitz, BackendPure:
	default:
		return fmt.Errorf("unsupported PDF_BACKEND %q (supported: fitz, pure)", c.PDF.Backend)
	}
	if c.PDF.ExtractTimeout <= 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must be positive")
	}
	if c.Extract.PreviewChars <= 0 {
		return fmt.Errorf("PREVIEW_CHARS must be positive, got %d", c.Extract.PreviewChars)
	}
	return nil
}

// BodyLimit returns the upload cap in bytes.
func (c *ServerConfig) BodyLimit() int {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
