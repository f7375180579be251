package banner

import (
	"fmt"

	"curatord/pkg/config"
)

const banner = `
 ██████╗██╗   ██╗██████╗  █████╗ ████████╗ ██████╗ ██████╗ ██████╗
██╔════╝██║   ██║██╔══██╗██╔══██╗╚══██╔══╝██╔═══██╗██╔══██╗██╔══██╗
██║     ██║   ██║██████╔╝███████║   ██║   ██║   ██║██████╔╝██║  ██║
██║     ██║   ██║██╔══██╗██╔══██║   ██║   ██║   ██║██╔══██╗██║  ██║
╚██████╗╚██████╔╝██║  ██║██║  ██║   ██║   ╚██████╔╝██║  ██║██████╔╝
 ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚═════╝
`

// Print prints the startup banner with the effective configuration.
func Print(cfg *config.Config, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", cfg.Addr())
	fmt.Printf("DB Path:   %s\n", cfg.Storage.DBPath)
	fmt.Printf("Documents: %s\n", cfg.Storage.DocumentsDir)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config:    %s\n", source)
	}
	if cfg.Seal.KeyHex == "" {
		fmt.Println("Sealing:   disabled (set seal.key_hex or CURATORD_SEAL_KEY)")
	} else {
		fmt.Println("Sealing:   enabled")
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/ingest - Submit a JSON array of raw messages")
	fmt.Println("GET  /v1/messages/recent?limit=<n> - Read the curated record")
	fmt.Println("GET  /v1/tasks?status=<status> - List workflow tasks")
	fmt.Println("GET  /v1/participants - Roster and liveness")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/ingest' -d '[{\"author\":\"user\",\"text\":\"hello\"}]'\n", portSuffix(cfg))
	fmt.Printf("curl 'http://localhost%s/v1/messages/recent?limit=10'\n", portSuffix(cfg))
}

func portSuffix(cfg *config.Config) string {
	p := cfg.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf(":%d", p)
}
