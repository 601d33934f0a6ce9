// Package config centralizes flag parsing and the file+env merge that
// produces the server's effective configuration.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Development fallbacks for the signing secrets, matching the ones the
// frontend ships with. Production deployments must override via config
// or SYNAPSE_JWT_SECRET / SYNAPSE_REFRESH_SECRET.
const (
	DevJWTSecret     = "synapse-dev-secret-key-change-in-production"
	DevRefreshSecret = "synapse-refresh-secret-key-change-in-production"
)

// EffectiveConfigResult bundles the merged config with the resolved
// listen address, db path and a human-readable source summary.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string
}

// ParseCommandFlags parses the process flags and reports which were
// explicitly set.
func ParseCommandFlags() (addr, dbPath, cfgPath string, set map[string]bool) {
	addrFlag := flag.String("addr", ":8080", "listen address")
	dbFlag := flag.String("db", "./data", "topic database path")
	cfgFlag := flag.String("config", "", "config file path")
	flag.Parse()
	set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return *addrFlag, *dbFlag, *cfgFlag, set
}

// ResolveConfigPath picks the config file path: explicit flag wins,
// then SYNAPSE_CONFIG, then ./synapse.yaml when present.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet && flagVal != "" {
		return flagVal
	}
	if p := os.Getenv("SYNAPSE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("synapse.yaml"); err == nil {
		return "synapse.yaml"
	}
	return flagVal
}

// Load reads and parses the YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("no config path provided")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

// LoadEffective merges the config file (when present) with SYNAPSE_*
// environment variables. envUsed reports whether any env override was
// applied.
func LoadEffective(path string) (*Config, bool, error) {
	cfg := &Config{}
	if path != "" {
		if fileCfg, err := Load(path); err == nil {
			cfg = fileCfg
		} else if !os.IsNotExist(err) {
			return nil, false, err
		}
	}
	envUsed := applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, envUsed, nil
}

func applyEnv(c *Config) bool {
	used := false
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
			used = true
		}
	}
	str("SYNAPSE_SERVER_ADDRESS", &c.Server.Address)
	if v := os.Getenv("SYNAPSE_SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
			used = true
		}
	}
	str("SYNAPSE_DB_PATH", &c.Storage.DBPath)
	str("SYNAPSE_USERS_DB_PATH", &c.Storage.UsersDBPath)
	str("SYNAPSE_SESSION_DIR", &c.Storage.SessionDir)
	str("SYNAPSE_JWT_SECRET", &c.Security.JWTSecret)
	str("SYNAPSE_REFRESH_SECRET", &c.Security.RefreshSecret)
	str("GEMINI_API_KEY", &c.AI.APIKey)
	str("SYNAPSE_AI_MODEL", &c.AI.Model)
	str("SYNAPSE_LOG_LEVEL", &c.Logging.Level)
	if v := os.Getenv("SYNAPSE_ALLOWED_ORIGINS"); v != "" {
		c.Security.CORS.AllowedOrigins = splitCSV(v)
		used = true
	}
	return used
}

func applyDefaults(c *Config) {
	if c.Security.JWTSecret == "" {
		c.Security.JWTSecret = DevJWTSecret
	}
	if c.Security.RefreshSecret == "" {
		c.Security.RefreshSecret = DevRefreshSecret
	}
	if c.Storage.UsersDBPath == "" {
		c.Storage.UsersDBPath = "./data/users.db"
	}
	if c.Storage.SessionDir == "" {
		c.Storage.SessionDir = "./data/session"
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
