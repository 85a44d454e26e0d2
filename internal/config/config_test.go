package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Monitor.TopK != 5 || !cfg.MercadoLivre.Enabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CardSources) == 0 {
		t.Fatalf("expected a default card source")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"monitor":{"query":"notebook dell","top_k":3},"twilio":{"account_sid":"ACfile"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWILIO_ACCOUNT_SID", "ACenv")
	t.Setenv("MAX_PRICE", "4500,00")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Monitor.Query != "notebook dell" || cfg.Monitor.TopK != 3 {
		t.Fatalf("file values not applied: %+v", cfg.Monitor)
	}
	if cfg.Twilio.AccountSID != "ACenv" {
		t.Fatalf("env must override file for secrets, got %q", cfg.Twilio.AccountSID)
	}
	if cfg.Monitor.MaxPrice != "4500,00" {
		t.Fatalf("env max_price not applied: %q", cfg.Monitor.MaxPrice)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}
