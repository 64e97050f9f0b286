package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const minimalConfig = `
[server]
host = "127.0.0.1"
port = 8080

[traffic]
feed_url = "wss://24data.ptfs.app/wss"
`

func TestLoadAndDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Traffic.ReconnectDelaySecs != 5 {
		t.Errorf("ReconnectDelaySecs = %d, want 5", cfg.Traffic.ReconnectDelaySecs)
	}
	if cfg.Traffic.DialRetryDelaySecs != 10 {
		t.Errorf("DialRetryDelaySecs = %d, want 10", cfg.Traffic.DialRetryDelaySecs)
	}
	if cfg.Traffic.SubscriberBufferSize != 256 {
		t.Errorf("SubscriberBufferSize = %d, want 256", cfg.Traffic.SubscriberBufferSize)
	}
	if cfg.Traffic.EvictionGraceTicks != 1 {
		t.Errorf("EvictionGraceTicks = %d, want 1", cfg.Traffic.EvictionGraceTicks)
	}
	if cfg.Traffic.CorrectedPhaseRules {
		t.Error("CorrectedPhaseRules should default to false")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Storage.SQLitePath != ":memory:" {
		t.Errorf("SQLitePath = %q, want :memory:", cfg.Storage.SQLitePath)
	}
	if cfg.TTS.BaseURL != "https://api.elevenlabs.io" || cfg.TTS.TimeoutSeconds != 30 {
		t.Errorf("TTS defaults = %q/%d", cfg.TTS.BaseURL, cfg.TTS.TimeoutSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWithFallbackPrefersExplicitPath(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"duplicate additional port", func(c *Config) { c.Server.AdditionalPorts = []int{8080} }},
		{"missing feed url", func(c *Config) { c.Traffic.FeedURL = "" }},
		{"http feed url", func(c *Config) { c.Traffic.FeedURL = "http://example.com/wss" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"negative grace ticks", func(c *Config) { c.Traffic.EvictionGraceTicks = -1 }},
		{"missing static dir", func(c *Config) { c.Server.StaticFilesDir = "/does/not/exist" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
				Traffic: TrafficConfig{FeedURL: "wss://24data.ptfs.app/wss"},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
