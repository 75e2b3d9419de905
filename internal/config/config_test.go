package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sleuth.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, env := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("defaults changed by Load:\n got %+v\nwant %+v", cfg, DefaultConfig())
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
api:
  base_url: http://file:9000
  timeout: 3s
server:
  addr: ":9000"
  allowed_origins: ["http://game.local"]
  rate_limit:
    requests: 10
    window: 30s
log:
  level: debug
hints:
  provider: mock
`)
	t.Setenv("SLEUTH_API_BASE_URL", "http://env:9001")
	t.Setenv("SLEUTH_ENGINE_MAX_ROWS", "50")

	cfg, err := Load(path, map[string]any{"server.addr": ":7000"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.BaseURL != "http://env:9001" {
		t.Errorf("env should beat file: base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.API.Timeout)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("override should beat file: addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://game.local" {
		t.Errorf("allowed_origins = %v", cfg.Server.AllowedOrigins)
	}
	if got := cfg.HTTPServer().RateLimit; got.Requests != 10 || got.Window != 30*time.Second {
		t.Errorf("rate limit = %+v", got)
	}
	if cfg.QueryEngine().MaxRows != 50 {
		t.Errorf("max_rows = %d", cfg.Engine.MaxRows)
	}
	if cfg.Logging().Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.LLM().Provider != "mock" {
		t.Errorf("provider = %q", cfg.Hints.Provider)
	}
	// Untouched keys keep their defaults.
	if cfg.API.Retry != DefaultConfig().API.Retry {
		t.Errorf("retry = %+v", cfg.API.Retry)
	}
}

func TestLoad_StandardProviderKeys(t *testing.T) {
	isolate(t)
	t.Setenv("SLEUTH_HINTS_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.LLM().Anthropic; got.APIKey != "sk-ant" || got.Model != "claude-haiku" {
		t.Fatalf("anthropic = %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		path      func(t *testing.T) string
		env       map[string]string
		overrides map[string]any
		want      string
	}{
		{
			name: "missing explicit file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			want: "read config",
		},
		{
			name: "bad base url",
			path: func(*testing.T) string { return "" },
			env:  map[string]string{"SLEUTH_API_BASE_URL": "ftp://x"},
			want: "api:",
		},
		{
			name:      "provider without key",
			path:      func(*testing.T) string { return "" },
			overrides: map[string]any{"hints.provider": "openai"},
			want:      "hints.openai.api_key",
		},
		{
			name: "bad log level",
			path: func(t *testing.T) string { return writeFile(t, "log:\n  level: chatty\n") },
			want: "log:",
		},
		{
			name:      "server mode",
			path:      func(*testing.T) string { return "" },
			overrides: map[string]any{"server.mode": "turbo"},
			want:      "server:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path(t), tt.overrides)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestConverters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hints.MaxTokens = 123
	cfg.Hints.Timeout = 7 * time.Second

	if got := cfg.HintService(); got.MaxTokens != 123 || got.Timeout != 7*time.Second {
		t.Fatalf("HintService = %+v", got)
	}
	if got := cfg.LLM(); got.Timeout != 7*time.Second || got.Retry.MaxAttempts != cfg.Hints.Retry.MaxAttempts {
		t.Fatalf("LLM = %+v", got)
	}
	if got := cfg.APIClient(); got.BaseURL != "http://localhost:8000" || got.Retry.MaxAttempts != 3 {
		t.Fatalf("APIClient = %+v", got)
	}
}
