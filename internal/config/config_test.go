package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointXDGAt redirects the settings lookup to an empty directory so tests
// never pick up a real user config. xdg caches env vars at init, hence the
// Reload calls.
func pointXDGAt(t *testing.T, dir string) {
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestValidateConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid absolute json path", filepath.Join(tempDir, "roi-config.json"), false},
		{"empty path", "", true},
		{"whitespace path", "   ", true},
		{"relative path", "roi-config.json", true},
		{"wrong extension", filepath.Join(tempDir, "roi-config.yaml"), true},
		{"path traversal", tempDir + "/../../../etc/roi.json", true},
		{"reserved directory", "/etc/roi-config.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigFile(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFrom(t *testing.T) {
	t.Run("valid settings file", func(t *testing.T) {
		tempDir := t.TempDir()
		settingsPath := filepath.Join(tempDir, "config.yaml")
		content := "config_file: " + filepath.Join(tempDir, "roi-config.json") + "\nversion: \"1.0\"\n"
		require.NoError(t, os.WriteFile(settingsPath, []byte(content), 0600))

		cfg, err := LoadFrom(settingsPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "roi-config.json"), cfg.ConfigFile)
		assert.Equal(t, "1.0", cfg.Version)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom("/definitely/does/not/exist/config.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		tempDir := t.TempDir()
		settingsPath := filepath.Join(tempDir, "config.yaml")
		require.NoError(t, os.WriteFile(settingsPath, []byte("config_file: [broken"), 0600))

		_, err := LoadFrom(settingsPath)
		assert.Error(t, err)
	})
}

func TestSaveToRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	settingsPath := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := Config{
		ConfigFile: filepath.Join(tempDir, "roi-config.json"),
		BackupDir:  filepath.Join(tempDir, "backups"),
		Version:    "1.0",
	}
	require.NoError(t, cfg.SaveTo(settingsPath))

	// InitTime is stamped on first save
	assert.NotZero(t, cfg.InitTime)

	loaded, err := LoadFrom(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.ConfigFile, loaded.ConfigFile)
	assert.Equal(t, cfg.BackupDir, loaded.BackupDir)
	assert.Equal(t, cfg.InitTime, loaded.InitTime)
}

func TestLoadEnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	override := filepath.Join(tempDir, "override.json")
	t.Setenv(EnvConfigPath, override)
	pointXDGAt(t, filepath.Join(tempDir, "xdg"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, override, cfg.ConfigFile)
}

func TestLoadWithoutAnySource(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	pointXDGAt(t, filepath.Join(tempDir, "xdg"))

	_, err := Load()
	assert.Error(t, err)
}

func TestResolvedBackupDir(t *testing.T) {
	cfg := Config{ConfigFile: "/home/user/configs/roi-config.json"}
	assert.Equal(t, "/home/user/configs", cfg.ResolvedBackupDir())

	cfg.BackupDir = "/home/user/backups"
	assert.Equal(t, "/home/user/backups", cfg.ResolvedBackupDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "configs"), ExpandPath("~/configs"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
