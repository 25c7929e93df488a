package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secretai.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	t.Setenv("TRACE_TOKEN", "t-123")

	path := writeConfig(t, `
api_key: ${TEST_SECRET_KEY}
chain_id: secret-4
node_url: https://lcd.mainnet.secretsaturn.net
worker_contract: secret1worker
log_level: debug
chat:
  model: deepseek-r1:70b
  temperature: 1.0
  width: 80
headers:
  X-Trace-Token: "Bearer ${TRACE_TOKEN}"
`)
	t.Setenv("TEST_SECRET_KEY", "k-456")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sdk := cfg.SDK()
	if sdk.APIKey != "k-456" {
		t.Errorf("expected expanded api key, got %q", sdk.APIKey)
	}
	if sdk.ChainID != "secret-4" || sdk.NodeURL != "https://lcd.mainnet.secretsaturn.net" || sdk.WorkerContract != "secret1worker" {
		t.Errorf("unexpected SDK config: %+v", sdk)
	}
	if sdk.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", sdk.LogLevel)
	}
	if cfg.Chat.Model != "deepseek-r1:70b" || cfg.Chat.Width != 80 || cfg.Chat.Temperature != 1.0 {
		t.Errorf("unexpected chat config: %+v", cfg.Chat)
	}

	headers := cfg.ExpandedHeaders()
	if headers["X-Trace-Token"] != "Bearer t-123" {
		t.Errorf("expected expanded header, got %q", headers["X-Trace-Token"])
	}
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.NodeURL != "" || cfg.ExpandedHeaders() != nil {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "chain_id: [", "failed to parse config YAML"},
		{"bad node url", "node_url: ftp://example.com", "node_url"},
		{"missing host", "node_url: https://", "node_url"},
		{"bad chat host", "chat:\n  host: localhost:11434", "chat.host"},
		{"negative width", "chat:\n  width: -1", "chat.width"},
		{"bad header", "headers:\n  \"X Bad\": v", "invalid header name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected empty config, got nil")
	}
}

func TestLoadWithDefaults_WorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "secretai.yaml"), []byte("chain_id: secret-4\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.ChainID != "secret-4" {
		t.Errorf("expected chain id from ./secretai.yaml, got %q", cfg.ChainID)
	}
}

func TestFind_ReportsPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "configs", "secretai.yaml"), []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, path, err := Find()
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if path != "./configs/secretai.yaml" {
		t.Errorf("unexpected path %q", path)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level from file, got %q", cfg.LogLevel)
	}
}

func TestExpandEnvWith(t *testing.T) {
	env := map[string]string{"A": "1", "B_2": "two"}
	getenv := func(k string) string { return env[k] }

	tests := map[string]string{
		"${A}":          "1",
		"$A-$B_2":       "1-two",
		"x${MISSING}y":  "xy",
		"no vars":       "no vars",
		"Bearer ${B_2}": "Bearer two",
	}
	for in, want := range tests {
		if got := ExpandEnvWith(in, getenv); got != want {
			t.Errorf("ExpandEnvWith(%q) = %q, want %q", in, got, want)
		}
	}
}
