package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"otakurganizer/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "otakurganizer", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.CatalogDir != filepath.Join(tempHome, ".local", "share", "otakurganizer") {
		t.Fatalf("unexpected catalog dir %q", cfg.Paths.CatalogDir)
	}
	if cfg.Paths.TargetRoot != filepath.Join(tempHome, "Anime") {
		t.Fatalf("unexpected target root %q", cfg.Paths.TargetRoot)
	}
	if cfg.CatalogPath() != filepath.Join(cfg.Paths.CatalogDir, "catalog.db") {
		t.Fatalf("unexpected catalog path %q", cfg.CatalogPath())
	}
	if cfg.Embedding.Provider != config.ProviderHash || cfg.Embedding.Dimensions != 384 {
		t.Fatalf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if !cfg.Scan.IncludeSubtitles {
		t.Fatal("expected subtitles included by default")
	}
	if cfg.AI.Enabled {
		t.Fatal("expected ai disabled by default")
	}
}

func TestLoadFromFileNormalizesExtensions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[scan]
allowed_formats = ["MKV", ".mp4", "mkv", " "]
subtitle_extensions = ["ASS", ".srt"]

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to be used, got %q exists=%v", resolved, exists)
	}
	if got := strings.Join(cfg.Scan.AllowedFormats, ","); got != ".mkv,.mp4" {
		t.Fatalf("unexpected allowed formats %q", got)
	}
	if !cfg.IsSubtitleExtension(".ASS") || !cfg.IsSubtitleExtension(".srt") {
		t.Fatalf("unexpected subtitle extensions %v", cfg.Scan.SubtitleExtensions)
	}
	if !cfg.AllowsFormat(".MKV") || cfg.AllowsFormat(".avi") {
		t.Fatalf("AllowsFormat mismatch for %v", cfg.Scan.AllowedFormats)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nlibrary_dir = \"/x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OTAKU_AI_API_KEY", " ai-key ")
	t.Setenv("OTAKU_EMBEDDING_API_KEY", "embed-key")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[embedding]
provider = "openai"

[ai]
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AI.APIKey != "ai-key" {
		t.Fatalf("expected ai key from env, got %q", cfg.AI.APIKey)
	}
	if cfg.Embedding.APIKey != "embed-key" {
		t.Fatalf("expected embedding key from env, got %q", cfg.Embedding.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name:    "unknown provider",
			mutate:  func(c *config.Config) { c.Embedding.Provider = "bert" },
			wantErr: "embedding.provider",
		},
		{
			name:    "openai without key",
			mutate:  func(c *config.Config) { c.Embedding.Provider = config.ProviderOpenAI },
			wantErr: "embedding.api_key",
		},
		{
			name:    "zero dimensions",
			mutate:  func(c *config.Config) { c.Embedding.Dimensions = 0 },
			wantErr: "embedding.dimensions",
		},
		{
			name:    "ai without key",
			mutate:  func(c *config.Config) { c.AI.Enabled = true },
			wantErr: "ai.api_key",
		},
		{
			name: "ai zero rate",
			mutate: func(c *config.Config) {
				c.AI.Enabled = true
				c.AI.APIKey = "k"
				c.AI.RateLimitRequests = 0
			},
			wantErr: "ai.rate_limit_requests",
		},
		{
			name: "metadata zero rate",
			mutate: func(c *config.Config) {
				c.Metadata.OnlineEnabled = true
				c.Metadata.RateLimitPerSecond = 0
			},
			wantErr: "metadata.rate_limit_per_second",
		},
		{
			name:    "bad log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample failed to load: %v", err)
	}
}

func TestEncodeMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.AI.APIKey = "secret-ai"
	cfg.Embedding.APIKey = "secret-embed"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("expected secrets masked, got %s", data)
	}
	if cfg.AI.APIKey != "secret-ai" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
