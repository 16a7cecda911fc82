package config

import (
	"os"
	"testing"
	"time"
)

var keys = []string{
	"PORT", "DATABASE_PATH", "SECRET_KEY", "UPLOAD_DIR", "UPLOAD_UNIQUE_NAMES",
	"MAX_UPLOAD_MB", "SESSION_TTL", "COOKIE_SECURE", "PASSWORD_ITERATIONS",
	"PASSWORD_ALGORITHM", "DEBUG_ROUTES", "DEBUG_OPERATOR_EMAILS",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
}

// clearEnv unsets every key FromEnv reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.DatabasePath != "./real_estate.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.UploadDir != "./static/uploads" {
		t.Errorf("UploadDir = %q", cfg.UploadDir)
	}
	if !cfg.UploadUniqueNames {
		t.Error("UploadUniqueNames should default to true")
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.PasswordAlgorithm != "pbkdf2" || cfg.PasswordIterations != 600000 {
		t.Errorf("password settings = %s/%d", cfg.PasswordAlgorithm, cfg.PasswordIterations)
	}
	if cfg.DebugRoutes {
		t.Error("DebugRoutes must be off by default")
	}
	if len(cfg.DebugOperators) != 0 || len(cfg.AllowedOrigins) != 0 {
		t.Errorf("lists should be empty, got %v %v", cfg.DebugOperators, cfg.AllowedOrigins)
	}
}

func TestFromEnvRequiresSecret(t *testing.T) {
	clearEnv(t)
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without SECRET_KEY")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "k")
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("DEBUG_OPERATOR_EMAILS", " ops@x.com , ,root@x.com")
	t.Setenv("PASSWORD_ALGORITHM", "BCRYPT")
	t.Setenv("MAX_UPLOAD_MB", "2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if !cfg.DebugRoutes {
		t.Error("DebugRoutes not enabled")
	}
	if len(cfg.DebugOperators) != 2 || cfg.DebugOperators[0] != "ops@x.com" || cfg.DebugOperators[1] != "root@x.com" {
		t.Errorf("DebugOperators = %q", cfg.DebugOperators)
	}
	if cfg.PasswordAlgorithm != "bcrypt" {
		t.Errorf("PasswordAlgorithm = %q", cfg.PasswordAlgorithm)
	}
	if cfg.MaxUploadBytes != 2<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "eighty",
		"MAX_UPLOAD_MB":      "0",
		"SESSION_TTL":        "forever",
		"PASSWORD_ALGORITHM": "md5",
		"DEBUG_ROUTES":       "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SECRET_KEY", "k")
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}
