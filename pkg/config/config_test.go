package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  address: 127.0.0.1
  port: 9090
storage:
  db_path: /tmp/db
  documents_dir: /tmp/docs
curation:
  min_content_value: 0.25
  min_length: 10
retention:
  cron: "0 3 * * *"
  max_age_days: 14
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
	if cfg.Curation.MinContentValue != 0.25 || cfg.Curation.MinLength != 10 {
		t.Fatalf("curation = %+v", cfg.Curation)
	}
	if cfg.Retention.MaxAgeDays != 14 {
		t.Fatalf("retention = %+v", cfg.Retention)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file did not error")
	}
}

func TestAddrDefaults(t *testing.T) {
	var cfg Config
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("Addr = %q", cfg.Addr())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CURATORD_ADDR", "10.0.0.1:7070")
	t.Setenv("CURATORD_DB_PATH", "/data/db")
	t.Setenv("CURATORD_PARTICIPANTS", "agent-1, agent-2 ,")
	t.Setenv("CURATORD_MIN_CONTENT_VALUE", "0.5")
	t.Setenv("CURATORD_HEARTBEAT", "true")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatal("env not detected")
	}
	if cfg.Server.Address != "10.0.0.1" || cfg.Server.Port != 7070 {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Storage.DBPath != "/data/db" {
		t.Fatalf("db path = %q", cfg.Storage.DBPath)
	}
	if len(cfg.Participants) != 2 || cfg.Participants[1] != "agent-2" {
		t.Fatalf("participants = %v", cfg.Participants)
	}
	if cfg.Curation.MinContentValue != 0.5 {
		t.Fatalf("min content value = %f", cfg.Curation.MinContentValue)
	}
	if !cfg.Heartbeat.Enabled {
		t.Fatal("heartbeat not enabled")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("./flagged.yaml", true); got != "./flagged.yaml" {
		t.Fatalf("flag set: %q", got)
	}
	t.Setenv("CURATORD_CONFIG", "/etc/curatord.yaml")
	if got := ResolveConfigPath("./default.yaml", false); got != "/etc/curatord.yaml" {
		t.Fatalf("env fallback: %q", got)
	}
}
