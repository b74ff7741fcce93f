// Package config loads tasktree settings. Values come from the defaults,
// then an optional YAML file, then TASKTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI and the project service read.
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	DBPath          string `yaml:"db_path"`
	TemplateDir     string `yaml:"template_dir"`
	ListenAddr      string `yaml:"listen_addr"`
	LogLevel        string `yaml:"log_level"`
	LogSyncCalls    bool   `yaml:"log_sync_calls"`
	SyncTasksBranch bool   `yaml:"sync_tasks_branch"`
	AdvisoryGate    bool   `yaml:"advisory_gate"`
}

// DefaultConfig returns a Config with sensible defaults. Paths are rooted
// at ~/.tasktree when the home directory is known.
func DefaultConfig() Config {
	base := ".tasktree"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".tasktree")
	}
	return Config{
		Endpoint:    "http://localhost:8080",
		TimeoutMs:   10000,
		DBPath:      filepath.Join(base, "tasktree.db"),
		TemplateDir: filepath.Join(base, "templates"),
		ListenAddr:  ":8080",
		LogLevel:    "info",
	}
}

// Path returns the config file location: TASKTREE_CONFIG if set,
// ~/.tasktree/config.yaml otherwise.
func Path() string {
	if v := os.Getenv("TASKTREE_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tasktree", "config.yaml")
}

// Load reads the file at path over the defaults and applies environment
// overrides last. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot be used.
func (c Config) Validate() error {
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must not be negative, got %d", c.TimeoutMs)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Timeout returns the remote call timeout. Zero disables it.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Level returns the slog level for LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel accepts debug, info, warn and error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Values flattens the config for Store.Config.
func (c Config) Values() map[string]any {
	return map[string]any{
		"endpoint":          c.Endpoint,
		"timeout_ms":        c.TimeoutMs,
		"db_path":           c.DBPath,
		"template_dir":      c.TemplateDir,
		"listen_addr":       c.ListenAddr,
		"log_level":         c.LogLevel,
		"log_sync_calls":    c.LogSyncCalls,
		"sync_tasks_branch": c.SyncTasksBranch,
		"advisory_gate":     c.AdvisoryGate,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKTREE_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TASKTREE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("TASKTREE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKTREE_TEMPLATES"); v != "" {
		cfg.TemplateDir = v
	}
	if v := os.Getenv("TASKTREE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TASKTREE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	applyBoolEnv(&cfg.LogSyncCalls, "TASKTREE_LOG_SYNC_CALLS")
	applyBoolEnv(&cfg.SyncTasksBranch, "TASKTREE_SYNC_TASKS_BRANCH")
	applyBoolEnv(&cfg.AdvisoryGate, "TASKTREE_ADVISORY_GATE")
}

func applyBoolEnv(dst *bool, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
