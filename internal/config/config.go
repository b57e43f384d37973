package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	catalogFileName = "catalog.db"
	lockFileName    = "catalog.lock"
)

// Paths contains catalog, log, and organize target locations.
type Paths struct {
	CatalogDir string `toml:"catalog_dir"`
	LogDir     string `toml:"log_dir"`
	TargetRoot string `toml:"target_root"`
}

// Scan controls which files a directory walk picks up.
type Scan struct {
	AllowedFormats     []string `toml:"allowed_formats"`
	IncludeSubtitles   bool     `toml:"include_subtitles"`
	SubtitleExtensions []string `toml:"subtitle_extensions"`
}

// Embedding selects and configures the Vectorizer backend.
type Embedding struct {
	Provider       string `toml:"provider"`
	Dimensions     int    `toml:"dimensions"`
	Concurrency    int    `toml:"concurrency"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AI contains suggestion-provider connection settings.
type AI struct {
	Enabled                bool   `toml:"enabled"`
	APIKey                 string `toml:"api_key"`
	BaseURL                string `toml:"base_url"`
	Model                  string `toml:"model"`
	Referer                string `toml:"referer"`
	Title                  string `toml:"title"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	RateLimitRequests      int    `toml:"rate_limit_requests"`
	RateLimitWindowSeconds int    `toml:"rate_limit_window_seconds"`
}

// Metadata configures online description enrichment.
type Metadata struct {
	OnlineEnabled      bool    `toml:"online_enabled"`
	BaseURL            string  `toml:"base_url"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for otakurganizer.
//
// Configuration sections by subsystem:
//   - Paths: catalog database, logs, and the organize target root
//   - Scan: extension filters and subtitle association
//   - Embedding: Vectorizer backend (hash fallback or OpenAI-compatible API)
//   - AI: chat-completion suggestion provider
//   - Metadata: Jikan description lookups
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Scan          Scan          `toml:"scan"`
	Embedding     Embedding     `toml:"embedding"`
	AI            AI            `toml:"ai"`
	Metadata      Metadata      `toml:"metadata"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("otakurganizer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the catalog and log directories. The target root
// is created lazily by the organizer.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CatalogDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite database location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.CatalogDir, catalogFileName)
}

// LockPath returns the single-writer lock file guarding the catalog.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.CatalogDir, lockFileName)
}

// AllowsFormat reports whether ext (with leading dot, any case) is scannable.
func (c *Config) AllowsFormat(ext string) bool {
	return containsFold(c.Scan.AllowedFormats, ext)
}

// IsSubtitleExtension reports whether ext names a subtitle file.
func (c *Config) IsSubtitleExtension(ext string) bool {
	return containsFold(c.Scan.SubtitleExtensions, ext)
}

func containsFold(values []string, ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return false
	}
	for _, v := range values {
		if v == ext {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML with secrets masked.
func (c *Config) Encode() ([]byte, error) {
	masked := *c
	masked.Embedding.APIKey = maskSecret(masked.Embedding.APIKey)
	masked.AI.APIKey = maskSecret(masked.AI.APIKey)
	data, err := toml.Marshal(masked)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}
