package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"
	"github.com/Benggoy/f5-on-DPU-roi-config/pkg/fileops"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "roi-config-mcp" // application name used for config directory

// EnvConfigPath overrides the guarded config file path when set. This is
// the only environment knob the server honors.
const EnvConfigPath = "ROI_CONFIG_PATH"

// Config holds user configuration for the server.
type Config struct {
	// ConfigFile is the absolute path of the single JSON file the server
	// is allowed to read and write. No other path is ever touched.
	ConfigFile string `yaml:"config_file"`
	// BackupDir is where pre-write snapshots are stored. Empty means
	// alongside the config file.
	BackupDir string `yaml:"backup_dir,omitempty"`
	Version   string `yaml:"version"`   // Track config version
	InitTime  int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard settings file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config paths", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location, then applies the
// ROI_CONFIG_PATH environment override if present.
func Load() (*Config, error) {
	var cfg *Config

	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if exists {
		loaded, err := LoadFrom(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := DefaultConfig()
		cfg = &defaults
	}

	if override := os.Getenv(EnvConfigPath); override != "" {
		logging.Debug("Applying environment override", "var", EnvConfigPath, "path", override)
		cfg.ConfigFile = ExpandPath(override)
	}

	if cfg.ConfigFile == "" {
		return nil, fmt.Errorf("no config file path set; write %s or set %s", configPath, EnvConfigPath)
	}

	if err := ValidateConfigFile(cfg.ConfigFile); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	return cfg, nil
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading settings file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ConfigFile = ExpandPath(cfg.ConfigFile)
	return &cfg, nil
}

// FindConfigFile returns the path to an existing settings file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults. The guarded file
// path has no default; it must come from the settings file or environment.
func DefaultConfig() Config {
	return Config{
		Version:  "1.0",
		InitTime: 0, // Will be set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolvedBackupDir returns the directory backups are written to.
func (c *Config) ResolvedBackupDir() string {
	if c.BackupDir != "" {
		return ExpandPath(c.BackupDir)
	}
	return filepath.Dir(c.ConfigFile)
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ValidateConfigFile checks that the guarded file path is acceptable:
// absolute, a .json file, free of traversal sequences, and not inside a
// reserved system directory. The file itself does not have to exist yet.
func ValidateConfigFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file path cannot be empty")
	}

	expanded := ExpandPath(path)
	if !filepath.IsAbs(expanded) {
		return fmt.Errorf("config file path must be absolute or relative to home directory (~)")
	}

	if filepath.Ext(expanded) != ".json" {
		return fmt.Errorf("config file must be a .json file")
	}

	if err := fileops.ValidatePathSecurity(expanded); err != nil {
		return err
	}

	return nil
}
