package app

import (
	"fmt"
	"os"

	"synapse/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	// DB path must be present
	if p := eff.DBPath; p == "" {
		return fmt.Errorf("database path is empty: set --db flag, SYNAPSE_DB_PATH env, or storage.db_path in config")
	}

	// TLS cert/key presence check if one is set
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	// Secrets must never be empty; LoadEffective substitutes the dev
	// defaults, so an empty value here means the merge was bypassed.
	if eff.Config.Security.JWTSecret == "" || eff.Config.Security.RefreshSecret == "" {
		return fmt.Errorf("signing secrets are empty: set security.jwt_secret and security.refresh_secret")
	}

	if ret := eff.Config.Retention; ret.Enabled && ret.Period == "" && ret.Cron == "" {
		return fmt.Errorf("retention enabled without cron or period: set retention.cron or retention.period")
	}

	return nil
}
