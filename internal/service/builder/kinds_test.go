package builder

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
	"github.com/okarpov/pack-forge/internal/repository/stage"
)

// kindFixture builds a context and icon set for the requested kind.
func kindFixture(t *testing.T, kind pack.Kind, iconCandidates []string) (*pack.BuildContext, *config.Config, *pack.IconSet) {
	t.Helper()

	cfg := &config.Config{
		AppID:             "com.example.demo",
		AppBaseName:       "demo",
		AppFriendlyName:   "Demo App",
		AppSummary:        "A demo application",
		AppLicense:        "MIT",
		AppVendor:         "Example Corp",
		AppURL:            "https://example.com",
		AppVersionRelease: "1.0[2]",
		OutputDirectory:   filepath.Join(t.TempDir(), "Deploy"),
		AppendVersion:     true,
		Arch:              "x86_64",
	}

	buildCtx, err := pack.NewBuildContext(pack.Layout{
		Kind:            kind,
		AppID:           cfg.AppID,
		AppBaseName:     cfg.AppBaseName,
		VersionRelease:  cfg.AppVersionRelease,
		Arch:            cfg.Arch,
		BuildID:         "test",
		GlobalRoot:      t.TempDir(),
		OutputDirectory: cfg.OutputDirectory,
		AppendVersion:   true,
		HasDesktopEntry: !kind.IsWindows(),
	})
	require.NoError(t, err)

	icons, err := pack.ResolveIcons(iconCandidates, buildCtx)
	require.NoError(t, err)

	return buildCtx, cfg, icons
}

// expandManifest checks that a builder's manifest and commands reference
// only recognized macros.
func expandManifest(t *testing.T, buildCtx *pack.BuildContext, cfg *config.Config, icons *pack.IconSet, kb KindBuilder) string {
	t.Helper()

	pipeline := NewPipeline(buildCtx, cfg, icons, stage.NewDiskStager(), "linux-x86_64")
	macros := pipeline.macroTable(kb)

	manifest, err := kb.ManifestContent()
	require.NoError(t, err)

	expanded, err := macros.Expand("manifest", manifest)
	require.NoError(t, err)

	for _, command := range kb.BuildCommands() {
		_, err = macros.Expand("command", command)
		require.NoError(t, err, "command %q", command)
	}

	return expanded
}

// TestDebBuilder checks control-file placement, dpkg arch notation and
// command shape.
func TestDebBuilder(t *testing.T) {
	t.Parallel()

	buildCtx, cfg, icons := kindFixture(t, pack.KindDeb, nil)

	kb, err := NewKindBuilder(buildCtx, cfg, icons)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(buildCtx.BuildRoot, "DEBIAN", "control"), kb.ManifestPath())
	require.Equal(t, "/usr/bin/demo", kb.DesktopExec())
	require.Equal(t, buildCtx.UsrBin, kb.PublishBin())

	expanded := expandManifest(t, buildCtx, cfg, icons, kb)
	require.Contains(t, expanded, "Package: demo")
	require.Contains(t, expanded, "Version: 1.0-2")
	require.Contains(t, expanded, "Architecture: amd64")

	commands := kb.BuildCommands()
	require.Len(t, commands, 1)
	require.Contains(t, commands[0], "dpkg-deb")
}

// TestDebArchMapping pins dpkg architecture notation.
func TestDebArchMapping(t *testing.T) {
	t.Parallel()

	require.Equal(t, "amd64", debArch("x86_64"))
	require.Equal(t, "arm64", debArch("aarch64"))
	require.Equal(t, "i386", debArch("i686"))
	require.Equal(t, "riscv64", debArch("riscv64"))
}

// TestRpmBuilder checks spec placement outside the payload tree and the
// two-command sequence.
func TestRpmBuilder(t *testing.T) {
	t.Parallel()

	buildCtx, cfg, icons := kindFixture(t, pack.KindRpm, nil)

	kb, err := NewKindBuilder(buildCtx, cfg, icons)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(buildCtx.PackRoot, "demo.spec"), kb.ManifestPath())

	expanded := expandManifest(t, buildCtx, cfg, icons, kb)
	require.Contains(t, expanded, "Name: demo")
	require.Contains(t, expanded, "Release: 2")
	require.Contains(t, expanded, "License: MIT")

	commands := kb.BuildCommands()
	require.Len(t, commands, 2)
	require.Contains(t, commands[0], "rpmbuild -bb")
	require.Contains(t, commands[1], "mv -f")
}

// TestFlatpakBuilder checks the generated YAML manifest.
func TestFlatpakBuilder(t *testing.T) {
	t.Parallel()

	buildCtx, cfg, icons := kindFixture(t, pack.KindFlatpak, nil)

	kb, err := NewKindBuilder(buildCtx, cfg, icons)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(buildCtx.PackRoot, "com.example.demo.yml"), kb.ManifestPath())
	require.Equal(t, "demo", kb.DesktopExec())

	expanded := expandManifest(t, buildCtx, cfg, icons, kb)
	require.Contains(t, expanded, "app-id: com.example.demo")
	require.Contains(t, expanded, "runtime: org.freedesktop.Platform")
	require.Contains(t, expanded, "command: demo")
	require.Contains(t, expanded, "buildsystem: simple")

	commands := kb.BuildCommands()
	require.Len(t, commands, 2)
	require.Contains(t, commands[0], "flatpak-builder")
	require.Contains(t, commands[1], "build-bundle")
}

// TestAppImageBuilder checks the manifest-less flow and conditional icon
// and desktop steps.
func TestAppImageBuilder(t *testing.T) {
	t.Parallel()

	buildCtx, cfg, icons := kindFixture(t, pack.KindAppImage, []string{"icon.svg"})

	kb, err := NewKindBuilder(buildCtx, cfg, icons)
	require.NoError(t, err)

	require.Empty(t, kb.ManifestPath())
	require.Equal(t, filepath.Join(buildCtx.PackRoot, "AppDir"), buildCtx.BuildRoot)

	commands := kb.BuildCommands()
	joined := strings.Join(commands, "\n")
	require.Contains(t, joined, "AppRun")
	require.Contains(t, joined, ".DirIcon")
	require.Contains(t, commands[len(commands)-1], "appimagetool")

	// Without a prime icon, the icon steps disappear.
	buildCtx2, cfg2, icons2 := kindFixture(t, pack.KindAppImage, nil)

	kb2, err := NewKindBuilder(buildCtx2, cfg2, icons2)
	require.NoError(t, err)
	require.NotContains(t, strings.Join(kb2.BuildCommands(), "\n"), ".DirIcon")

	expandManifest(t, buildCtx, cfg, icons, kb)
}

// TestWinSetupBuilder checks the flat layout and the Inno Setup script.
func TestWinSetupBuilder(t *testing.T) {
	t.Parallel()

	buildCtx, cfg, icons := kindFixture(t, pack.KindWinSetup, []string{"app.ico"})

	kb, err := NewKindBuilder(buildCtx, cfg, icons)
	require.NoError(t, err)

	// Flat layout: publish output goes straight into the build root.
	require.Equal(t, buildCtx.BuildRoot, kb.PublishBin())
	require.Equal(t, "demo.exe", kb.DesktopExec())

	expanded := expandManifest(t, buildCtx, cfg, icons, kb)
	require.Contains(t, expanded, "AppId=com.example.demo")
	require.Contains(t, expanded, "OutputBaseFilename=demo-1.0-2.x86_64")
	require.Contains(t, expanded, "SetupIconFile=")

	commands := kb.BuildCommands()
	require.Len(t, commands, 1)
	require.Contains(t, commands[0], "iscc")
}
