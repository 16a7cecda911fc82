package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	SecretKey    string

	UploadDir         string
	UploadUniqueNames bool
	MaxUploadBytes    int64

	SessionTTL   time.Duration
	CookieSecure bool

	PasswordAlgorithm  string
	PasswordIterations int

	// DebugRoutes mounts /debug/users. Only DebugOperators may see it.
	DebugRoutes    bool
	DebugOperators []string

	AllowedOrigins []string
	LogLevel       string
}

// Load loads configuration from a .env file (if present) and environment
// variables, applying defaults for anything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := getEnv("SECRET_KEY", "")
	if secret == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	uniqueNames, err := strconv.ParseBool(getEnv("UPLOAD_UNIQUE_NAMES", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_UNIQUE_NAMES: %w", err)
	}

	maxUploadMB, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "32"), 10, 64)
	if err != nil || maxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", getEnv("MAX_UPLOAD_MB", ""))
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	iterations, err := strconv.Atoi(getEnv("PASSWORD_ITERATIONS", "600000"))
	if err != nil || iterations <= 0 {
		return nil, fmt.Errorf("invalid PASSWORD_ITERATIONS %q", getEnv("PASSWORD_ITERATIONS", ""))
	}

	algorithm := strings.ToLower(getEnv("PASSWORD_ALGORITHM", "pbkdf2"))
	if algorithm != "pbkdf2" && algorithm != "bcrypt" {
		return nil, fmt.Errorf("unsupported PASSWORD_ALGORITHM %q", algorithm)
	}

	debugRoutes, err := strconv.ParseBool(getEnv("DEBUG_ROUTES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEBUG_ROUTES: %w", err)
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./real_estate.db"),
		SecretKey:          secret,
		UploadDir:          getEnv("UPLOAD_DIR", "./static/uploads"),
		UploadUniqueNames:  uniqueNames,
		MaxUploadBytes:     maxUploadMB << 20,
		SessionTTL:         ttl,
		CookieSecure:       cookieSecure,
		PasswordAlgorithm:  algorithm,
		PasswordIterations: iterations,
		DebugRoutes:        debugRoutes,
		DebugOperators:     splitList(getEnv("DEBUG_OPERATOR_EMAILS", "")),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
