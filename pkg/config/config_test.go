package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp switches into a fresh temp directory for the duration of the test
// so Load() picks up only the files the test writes.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return tmpDir
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
port: "3000"
env: "test"
auth:
  enable_verification: false
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
redis:
  host: "redis.example.com"
  port: 6379
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Unsetenv("PGHOST")
	os.Unsetenv("BASE_URL")
	t.Setenv("PORT", "4000")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "4000" {
		t.Errorf("expected Port=4000 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.BaseURL != "http://localhost:4000" {
		t.Errorf("expected BaseURL=http://localhost:4000, got %s", cfg.BaseURL)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if cfg.Redis.Host != "redis.example.com" {
		t.Errorf("expected Redis.Host=redis.example.com (from yaml), got %s", cfg.Redis.Host)
	}
}

func TestLoad_MissingConfigFileUsesEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AUTH_ENABLE_VERIFICATION", "false")
	t.Setenv("PGDATABASE", "from_env")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Database != "from_env" {
		t.Errorf("expected database from env, got %q", cfg.Database.Database)
	}
	if cfg.Database.MigrationsPath != "./migrations" {
		t.Errorf("expected default migrations path, got %q", cfg.Database.MigrationsPath)
	}
}

func TestLoad_DotEnvIsApplied(t *testing.T) {
	tmpDir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("LOG_LEVEL=debug\nAUTH_ENABLE_VERIFICATION=false\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("AUTH_ENABLE_VERIFICATION")
	})

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level from .env, got %q", cfg.Log.Level)
	}
}

func TestLoad_VerificationRequiresSecretAndJWKS(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AUTH_ENABLE_VERIFICATION", "true")
	t.Setenv("JWKS_ENDPOINTS", "https://auth.worknest.dev=https://auth.worknest.dev/.well-known/jwks.json")
	os.Unsetenv("SESSION_SECRET")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error when SESSION_SECRET is missing")
	}

	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.Auth.JWKSEndpoints["https://auth.worknest.dev"]; got != "https://auth.worknest.dev/.well-known/jwks.json" {
		t.Errorf("unexpected JWKS endpoint %q", got)
	}
}

func TestLoad_TLSRequiresBothFiles(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AUTH_ENABLE_VERIFICATION", "false")
	t.Setenv("TLS_CERT_PATH", "/nonexistent/cert.pem")
	os.Unsetenv("TLS_KEY_PATH")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error when only TLS cert is set")
	}
}

func TestParseJWKSEndpoints(t *testing.T) {
	got := parseJWKSEndpoints(" a = https://a/jwks , broken, b=https://b/jwks")
	if len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %d: %v", len(got), got)
	}
	if got["a"] != "https://a/jwks" || got["b"] != "https://b/jwks" {
		t.Errorf("unexpected endpoints: %v", got)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "wn", Password: "p@ss", Database: "worknest", SSLMode: "disable"}
	want := "postgres://wn:p%40ss@db:5433/worknest?sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
