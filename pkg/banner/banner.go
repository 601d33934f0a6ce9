package banner

import (
	"fmt"

	"synapse/pkg/config"
)

const banner = `
███████╗██╗   ██╗███╗   ██╗ █████╗ ██████╗ ███████╗███████╗
██╔════╝╚██╗ ██╔╝████╗  ██║██╔══██╗██╔══██╗██╔════╝██╔════╝
███████╗ ╚████╔╝ ██╔██╗ ██║███████║██████╔╝███████╗█████╗
╚════██║  ╚██╔╝  ██║╚██╗██║██╔══██║██╔═══╝ ╚════██║██╔══╝
███████║   ██║   ██║ ╚████║██║  ██║██║     ███████║███████╗
╚══════╝   ╚═╝   ╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝     ╚══════╝╚══════╝
`

// PrintWithEff prints the banner using an EffectiveConfigResult which
// provides richer context (config, addr, dbpath, source).
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	var addr = eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	var dbPath = eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Storage.DBPath
	}
	var src = eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config: %s\n", src)

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl -X POST 'http://<host>:<port>/api/auth/register' -d '{\"email\":\"a@b.c\",\"username\":\"alice\",\"password\":\"Secret1\"}'")
	fmt.Println("curl -X POST 'http://<host>:<port>/v1/topics' -H 'Authorization: Bearer <token>' -d '{\"name\":\"My Topic\"}'")
	fmt.Println("\n== Production? =================================================")

	// Secrets
	devSecrets := false
	if eff.Config != nil {
		sec := eff.Config.Security
		if sec.JWTSecret == "" || sec.JWTSecret == config.DevJWTSecret ||
			sec.RefreshSecret == "" || sec.RefreshSecret == config.DevRefreshSecret {
			devSecrets = true
		}
	}
	if devSecrets {
		fmt.Println("- JWT secrets: DEV DEFAULTS (set SYNAPSE_JWT_SECRET / SYNAPSE_REFRESH_SECRET)")
	} else {
		fmt.Println("- JWT secrets: OK")
	}

	// Completion provider
	apiKey := false
	if eff.Config != nil && eff.Config.AI.APIKey != "" {
		apiKey = true
	}
	if apiKey {
		fmt.Println("- AI API key: OK")
	} else {
		fmt.Println("- AI API key: MISSING (replies fall back to a canned message)")
	}

	// TLS
	tlsOK := false
	if eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != "" {
		tlsOK = true
	}
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	// Retention
	retEnabled := false
	retInfo := ""
	if eff.Config != nil {
		retEnabled = eff.Config.Retention.Enabled
		if retEnabled {
			if eff.Config.Retention.Cron != "" {
				retInfo = "cron=" + eff.Config.Retention.Cron
			} else if eff.Config.Retention.Period != "" {
				retInfo = "period=" + eff.Config.Retention.Period
			}
		}
	}
	if retEnabled {
		if retInfo != "" {
			fmt.Printf("- Retention: enabled (%s)\n", retInfo)
		} else {
			fmt.Println("- Retention: enabled")
		}
	} else {
		fmt.Println("- Retention: disabled")
	}

	fmt.Println("\n== Logs: =================================================")
}
