package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
server:
  address: 127.0.0.1
  port: 9090
storage:
  db_path: /tmp/synapse-db
  users_db_path: /tmp/users.db
security:
  jwt_secret: file-secret
  cors:
    allowed_origins: ["http://localhost:5173"]
  rate_limit:
    rps: 10
    burst: 20
ai:
  model: gemini-2.5-flash
retention:
  enabled: true
  cron: "0 2 * * *"
  period: 720h
`

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "synapse.yaml")
	if err := os.WriteFile(p, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Address != "127.0.0.1" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Storage.DBPath != "/tmp/synapse-db" {
		t.Fatalf("db path = %q", cfg.Storage.DBPath)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 1 {
		t.Fatalf("cors = %+v", cfg.Security.CORS)
	}
	if !cfg.Retention.Enabled || cfg.Retention.Cron != "0 2 * * *" {
		t.Fatalf("retention = %+v", cfg.Retention)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEffectiveEnvOverridesFile(t *testing.T) {
	t.Setenv("SYNAPSE_DB_PATH", "/env/db")
	t.Setenv("SYNAPSE_JWT_SECRET", "env-secret")
	t.Setenv("SYNAPSE_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, envUsed, err := LoadEffective(writeConfig(t))
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if !envUsed {
		t.Fatalf("envUsed = false")
	}
	if cfg.Storage.DBPath != "/env/db" {
		t.Fatalf("db path = %q", cfg.Storage.DBPath)
	}
	if cfg.Security.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret = %q", cfg.Security.JWTSecret)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 2 || cfg.Security.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %+v", cfg.Security.CORS.AllowedOrigins)
	}
}

func TestLoadEffectiveDefaults(t *testing.T) {
	cfg, envUsed, err := LoadEffective("")
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if envUsed {
		t.Fatalf("envUsed = true with clean env")
	}
	if cfg.Security.JWTSecret != DevJWTSecret || cfg.Security.RefreshSecret != DevRefreshSecret {
		t.Fatalf("dev secrets not applied: %+v", cfg.Security)
	}
	if cfg.Storage.UsersDBPath == "" || cfg.Storage.SessionDir == "" {
		t.Fatalf("storage defaults missing: %+v", cfg.Storage)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/flag/path.yaml", true); got != "/flag/path.yaml" {
		t.Fatalf("flag path = %q", got)
	}
	t.Setenv("SYNAPSE_CONFIG", "/env/path.yaml")
	if got := ResolveConfigPath("", false); got != "/env/path.yaml" {
		t.Fatalf("env path = %q", got)
	}
}
