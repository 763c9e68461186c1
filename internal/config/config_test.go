package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Enrichment.BatchSize != 2 {
		t.Fatalf("default batch size = %d, want 2", cfg.Enrichment.BatchSize)
	}
	if cfg.Enrichment.MinSourceChars != 50 {
		t.Fatalf("default min source chars = %d, want 50", cfg.Enrichment.MinSourceChars)
	}
	if len(cfg.Providers.RSS.Feeds) == 0 {
		t.Fatal("default rss feeds missing")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env/override")
	t.Setenv("NEWSAPI_API_KEY", "env-key")
	t.Setenv("BETTERFEED_PORT", "9999")
	t.Setenv("BETTERFEED_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env/override" {
		t.Fatalf("dsn override not applied: %s", cfg.Database.DSN)
	}
	if cfg.Providers.NewsAPI.APIKey != "env-key" {
		t.Fatal("newsapi key override not applied")
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("port override not applied: %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override not applied: %s", cfg.Logging.Level)
	}
}

func TestLoadYAMLFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
server:
  port: 7070
providers:
  defaultLimit: 25
enrichment:
  batchSize: 4
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BETTERFEED_CONFIG", path)

	cfg := Load()

	if cfg.Server.Port != 7070 {
		t.Fatalf("yaml port not applied: %d", cfg.Server.Port)
	}
	if cfg.Providers.DefaultLimit != 25 {
		t.Fatalf("yaml default limit not applied: %d", cfg.Providers.DefaultLimit)
	}
	if cfg.Enrichment.BatchSize != 4 {
		t.Fatalf("yaml batch size not applied: %d", cfg.Enrichment.BatchSize)
	}
	// untouched sections keep their defaults
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("default llm model lost: %s", cfg.LLM.Model)
	}
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BETTERFEED_CONFIG", path)

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Fatalf("broken file should fall back to defaults, port = %d", cfg.Server.Port)
	}
}
