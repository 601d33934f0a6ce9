package config

import "fmt"

// Config is the YAML-file shape of the server configuration. Env vars
// (SYNAPSE_*) and command-line flags override file values.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`

	Storage struct {
		// DBPath holds the pebble topic store.
		DBPath string `yaml:"db_path"`
		// UsersDBPath holds the SQLite user database.
		UsersDBPath string `yaml:"users_db_path"`
		// SessionDir holds persisted session tokens.
		SessionDir string `yaml:"session_dir"`
	} `yaml:"storage"`

	Security struct {
		// Signing secrets for the access/refresh token pair.
		JWTSecret     string `yaml:"jwt_secret"`
		RefreshSecret string `yaml:"refresh_secret"`
		CORS          struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		IPWhitelist []string `yaml:"ip_whitelist"`
	} `yaml:"security"`

	AI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls the purge of soft-deleted accounts. When
// enabled, users soft-deleted for longer than Period are removed on the
// Cron schedule.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Period  string `yaml:"period"`
}

// Addr renders the listen address from the server block.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}
