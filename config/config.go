package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
)

const (
	// AppDirectoryName is the per-user application data directory name.
	AppDirectoryName = "nitroshare"
	// DataDirEnv overrides the resolved data directory when set.
	DataDirEnv = "NITROSHARE_DATA_DIR"
	// DefaultChunkSize is the transfer buffer size used when unset.
	DefaultChunkSize = 64 * 1024
	// MaxChunkSize bounds configured buffer sizes.
	MaxChunkSize = 16 * 1024 * 1024
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
	// DefaultLogFormat is used when no format is configured.
	DefaultLogFormat = "console"
	// configFileName is the persisted configuration file.
	configFileName = "config.json"
)

// Config contains persistent local-device settings.
type Config struct {
	DeviceID          string `json:"device_id"`
	DeviceName        string `json:"device_name"`
	DownloadDirectory string `json:"download_directory"`
	ChunkSize         int    `json:"chunk_size"`
	ApplyAttributes   *bool  `json:"apply_attributes,omitempty"`
	LogLevel          string `json:"log_level"`
	LogFormat         string `json:"log_format"`
}

// ShouldApplyAttributes reports whether received files get their sender's
// modification time and permission bits. Defaults to true.
func (c *Config) ShouldApplyAttributes() bool {
	return c.ApplyAttributes == nil || *c.ApplyAttributes
}

// ResolveDataDir returns the OS-aware app data directory.
//
// If NITROSHARE_DATA_DIR is set, its value is used as an explicit override.
func ResolveDataDir() (string, error) {
	if override := os.Getenv(DataDirEnv); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, AppDirectoryName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppDirectoryName), nil
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, AppDirectoryName), nil
	}
}

// ConfigPath returns the full path to config.json for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// EnsureDataDirectories creates the data directory and the default download
// directory beneath it.
func EnsureDataDirectories(dataDir string) error {
	for _, dir := range []string{dataDir, filepath.Join(dataDir, "received")} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Load reads and unmarshals config.json from disk.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Save marshals and writes config.json to disk.
func Save(path string, cfg *Config) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LoadOrCreate ensures directories and config exist, then returns both.
func LoadOrCreate() (*Config, string, error) {
	dataDir, err := ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	if err := EnsureDataDirectories(dataDir); err != nil {
		return nil, "", err
	}

	cfgPath := ConfigPath(dataDir)
	cfg, err := Load(cfgPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}

		cfg = &Config{}
		normalizeDefaults(cfg, dataDir)
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}
		return cfg, cfgPath, nil
	}

	if normalizeDefaults(cfg, dataDir) {
		if err := Save(cfgPath, cfg); err != nil {
			return nil, "", err
		}
	}

	return cfg, cfgPath, nil
}

func normalizeDefaults(cfg *Config, dataDir string) bool {
	updated := false

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
		updated = true
	}

	if cfg.DeviceName == "" {
		cfg.DeviceName = "NitroShare Device"
		if host, err := os.Hostname(); err == nil && host != "" {
			cfg.DeviceName = host
		}
		updated = true
	}

	if cfg.DownloadDirectory == "" {
		cfg.DownloadDirectory = filepath.Join(dataDir, "received")
		updated = true
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
		updated = true
	}
	if cfg.ChunkSize > MaxChunkSize {
		cfg.ChunkSize = MaxChunkSize
		updated = true
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
		updated = true
	}

	switch cfg.LogFormat {
	case "console", "json":
	default:
		cfg.LogFormat = DefaultLogFormat
		updated = true
	}

	return updated
}
