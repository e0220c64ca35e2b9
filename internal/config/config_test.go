package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and URI validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing app id.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Missing version.
	cfg = &Config{
		AppID:       "com.example.demo",
		AppBaseName: "demo",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay; defaults are applied.
	cfg = &Config{
		AppID:             "com.example.demo",
		AppBaseName:       "demo",
		AppVersionRelease: "1.0[2]",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultOutputDirectory, cfg.OutputDirectory)
	require.NotEmpty(t, cfg.Arch)

	// Bad upgrade folder URI.
	cfg.UpgradeFolder = "::not-a-url"

	err = Validate(cfg)
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures a project file is persisted and loaded
// back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pack-forge.yaml")

	cfg := &Config{
		AppID:             "com.example.demo",
		AppBaseName:       "demo",
		AppFriendlyName:   "Demo App",
		AppVersionRelease: "1.2.3[4]",
		Icons:             []string{"assets/icon.svg"},
		AppendVersion:     true,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.AppID, loaded.AppID)
	require.Equal(t, cfg.AppVersionRelease, loaded.AppVersionRelease)
	require.Equal(t, cfg.Icons, loaded.Icons)
	require.True(t, loaded.AppendVersion)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestSaveNewRefusesOverwrite ensures an existing project file is kept.
func TestSaveNewRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pack-forge.yaml")

	cfg := &Config{
		AppID:             "com.example.demo",
		AppBaseName:       "demo",
		AppVersionRelease: "1.0",
	}

	require.NoError(t, SaveNew(path, cfg))
	require.ErrorIs(t, SaveNew(path, cfg), errProjectFileExists)
}

// TestTemplateLoaders checks optional desktop/metainfo template reading.
func TestTemplateLoaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	desktopPath := filepath.Join(dir, "app.desktop")
	require.NoError(t, os.WriteFile(desktopPath, []byte("[Desktop Entry]\nExec=${DESKTOP_EXEC}\n"), 0o600))

	cfg := &Config{DesktopFile: desktopPath}

	text, err := cfg.DesktopText()
	require.NoError(t, err)
	require.Contains(t, text, "${DESKTOP_EXEC}")

	// No metainfo configured means no content and no error.
	text, err = cfg.MetaInfoText()
	require.NoError(t, err)
	require.Empty(t, text)

	// A configured but missing template is an error.
	cfg.MetaFile = filepath.Join(dir, "missing.xml")

	_, err = cfg.MetaInfoText()
	require.Error(t, err)
}
