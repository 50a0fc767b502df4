package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if cfg.ServerAddr != "http://localhost:8080" {
		t.Fatalf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.Name != "" {
		t.Fatalf("Name = %q, want empty", cfg.Name)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("CHATHUB_ADDRESS", "http://example.com:9090")
	t.Setenv("CHATHUB_NAME", "ana")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	if cfg.ServerAddr != "http://example.com:9090" {
		t.Fatalf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.Name != "ana" {
		t.Fatalf("Name = %q", cfg.Name)
	}
}

func TestParseEnv_EmptyKeepsDefaults(t *testing.T) {
	t.Setenv("CHATHUB_ADDRESS", "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	if cfg.ServerAddr != "http://localhost:8080" {
		t.Fatalf("ServerAddr = %q", cfg.ServerAddr)
	}
}
