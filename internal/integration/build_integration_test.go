package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
	"github.com/okarpov/pack-forge/internal/repository/stage"
	"github.com/okarpov/pack-forge/internal/service/builder"
)

// shellKind is a KindBuilder whose build commands run through a real
// shell, producing the artifact with plain cp.
type shellKind struct {
	buildCtx *pack.BuildContext
	manifest string
	commands []string
}

func (s *shellKind) Kind() pack.Kind { return s.buildCtx.Kind }

func (s *shellKind) DesktopExec() string { return "/usr/bin/" + s.buildCtx.AppBaseName }

func (s *shellKind) PublishBin() string { return s.buildCtx.UsrBin }

func (s *shellKind) BuildCommands() []string { return s.commands }

func (s *shellKind) ManifestPath() string {
	if s.manifest == "" {
		return ""
	}

	return filepath.Join(s.buildCtx.PackRoot, "manifest.txt")
}

func (s *shellKind) ManifestContent() (string, error) { return s.manifest, nil }

// fullProject writes a publish tree, a desktop template and icons into a
// temp directory and returns the matching configuration.
func fullProject(t *testing.T) (*config.Config, string) {
	t.Helper()

	dir := t.TempDir()

	publishDir := filepath.Join(dir, "publish")
	require.NoError(t, os.MkdirAll(filepath.Join(publishDir, "resources"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publishDir, "demo"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publishDir, "resources", "strings.txt"), []byte("hello"), 0o644))

	desktopPath := filepath.Join(dir, "demo.desktop")
	desktop := "[Desktop Entry]\nType=Application\nName=${APP_FRIENDLY_NAME}\nExec=${DESKTOP_EXEC}\nIcon=${APP_ID}\n"
	require.NoError(t, os.WriteFile(desktopPath, []byte(desktop), 0o600))

	svgPath := filepath.Join(dir, "icon.svg")
	require.NoError(t, os.WriteFile(svgPath, []byte("<svg/>"), 0o600))

	pngPath := filepath.Join(dir, "icon.128x128.png")
	require.NoError(t, os.WriteFile(pngPath, []byte("png"), 0o600))

	cfg := &config.Config{
		AppID:             "com.example.demo",
		AppBaseName:       "demo",
		AppFriendlyName:   "Demo App",
		AppSummary:        "A demo application",
		AppLicense:        "MIT",
		AppVendor:         "Example Corp",
		AppURL:            "https://example.com",
		AppVersionRelease: "2.1[3]",
		PublishDir:        publishDir,
		DesktopFile:       desktopPath,
		Icons:             []string{svgPath, pngPath},
		OutputDirectory:   filepath.Join(dir, "Deploy"),
		AppendVersion:     true,
		Arch:              "x86_64",
	}

	return cfg, dir
}

// TestPipelineEndToEnd drives the full pipeline with real shell commands
// and checks the staged tree and the produced artifact.
func TestPipelineEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Parallel()

	cfg, dir := fullProject(t)
	ctx := context.Background()

	buildCtx, err := pack.NewBuildContext(pack.Layout{
		Kind:            pack.KindDeb,
		AppID:           cfg.AppID,
		AppBaseName:     cfg.AppBaseName,
		VersionRelease:  cfg.AppVersionRelease,
		Arch:            cfg.Arch,
		BuildID:         "integration",
		GlobalRoot:      filepath.Join(dir, "tmp"),
		OutputDirectory: cfg.OutputDirectory,
		AppendVersion:   true,
		HasDesktopEntry: true,
	})
	require.NoError(t, err)

	icons, err := pack.ResolveIcons(cfg.Icons, buildCtx)
	require.NoError(t, err)

	kind := &shellKind{
		buildCtx: buildCtx,
		manifest: "Package: ${APP_BASE_NAME}\nVersion: ${APP_VERSION}-${PACK_RELEASE}\n",
		commands: []string{
			`tar -cf "${OUTPUT_DIR}/payload.tar" -C "${BUILD_ROOT}" .`,
			`cp "${OUTPUT_DIR}/payload.tar" "${OUTPUT_PATH}"`,
		},
	}

	pipeline := builder.NewPipeline(buildCtx, cfg, icons, stage.NewDiskStager(), "linux-x86_64")
	require.NoError(t, pipeline.Run(ctx, kind))

	// Publish tree staged under usr/bin, modes preserved.
	info, err := os.Stat(filepath.Join(buildCtx.UsrBin, "demo"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	contents, err := os.ReadFile(filepath.Join(buildCtx.UsrBin, "resources", "strings.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))

	// Desktop entry fully expanded.
	contents, err = os.ReadFile(buildCtx.DesktopPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Exec=/usr/bin/demo")
	require.NotContains(t, string(contents), "${")

	// Manifest written with version and release split from "2.1[3]".
	contents, err = os.ReadFile(kind.ManifestPath())
	require.NoError(t, err)
	require.Contains(t, string(contents), "Version: 2.1-3")

	// SVG wins the prime slot; both icons land in the map.
	_, err = os.Stat(filepath.Join(buildCtx.PackRoot, "com.example.demo.svg"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(buildCtx.ShareIcons, "hicolor", "scalable", "apps", "com.example.demo.svg"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(buildCtx.ShareIcons, "hicolor", "128x128", "apps", "com.example.demo.png"))
	require.NoError(t, err)

	// The shell commands produced the artifact under its synthesized name.
	require.Equal(t, "demo-2.1-3.x86_64.deb", buildCtx.OutputName)

	_, err = os.Stat(buildCtx.OutputPath())
	require.NoError(t, err)
}

// TestPipelineCommandFailureSurfacesOutput checks that a failing shell
// command aborts the run with its captured output.
func TestPipelineCommandFailureSurfacesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Parallel()

	cfg, dir := fullProject(t)
	ctx := context.Background()

	buildCtx, err := pack.NewBuildContext(pack.Layout{
		Kind:            pack.KindRpm,
		AppID:           cfg.AppID,
		AppBaseName:     cfg.AppBaseName,
		VersionRelease:  cfg.AppVersionRelease,
		Arch:            cfg.Arch,
		BuildID:         "integration",
		GlobalRoot:      filepath.Join(dir, "tmp"),
		OutputDirectory: cfg.OutputDirectory,
	})
	require.NoError(t, err)

	icons, err := pack.ResolveIcons(nil, buildCtx)
	require.NoError(t, err)

	kind := &shellKind{
		buildCtx: buildCtx,
		commands: []string{
			`echo preparing`,
			`echo "tool exploded" >&2; exit 7`,
			`echo never-reached > "${OUTPUT_PATH}"`,
		},
	}

	pipeline := builder.NewPipeline(buildCtx, cfg, icons, stage.NewDiskStager(), "linux-x86_64")

	err = pipeline.Run(ctx, kind)
	require.Error(t, err)

	var commandErr *pack.CommandError

	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, 7, commandErr.ExitCode)
	require.Contains(t, commandErr.Output, "tool exploded")

	// The aborted command never produced the artifact.
	_, err = os.Stat(buildCtx.OutputPath())
	require.True(t, os.IsNotExist(err))
}

// TestWindowsFlatStaging checks that a Windows kind stages the publish
// tree flat, without the FHS hierarchy.
func TestWindowsFlatStaging(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Parallel()

	cfg, dir := fullProject(t)
	ctx := context.Background()

	buildCtx, err := pack.NewBuildContext(pack.Layout{
		Kind:            pack.KindWinSetup,
		AppID:           cfg.AppID,
		AppBaseName:     cfg.AppBaseName,
		VersionRelease:  cfg.AppVersionRelease,
		Arch:            cfg.Arch,
		BuildID:         "integration",
		GlobalRoot:      filepath.Join(dir, "tmp"),
		OutputDirectory: cfg.OutputDirectory,
		AppendVersion:   true,
	})
	require.NoError(t, err)
	require.Empty(t, buildCtx.UsrBin)
	require.Empty(t, buildCtx.DesktopPath)
	require.True(t, strings.HasSuffix(buildCtx.OutputName, ".exe"))

	icons, err := pack.ResolveIcons(cfg.Icons, buildCtx)
	require.NoError(t, err)
	require.Empty(t, icons.Entries)

	kind := &shellKind{buildCtx: buildCtx, commands: nil}
	// Flat layout: publish output goes straight into the build root.
	kindPublish := buildCtx.BuildRoot

	pipeline := builder.NewPipeline(buildCtx, cfg, icons, stage.NewDiskStager(), "windows-x86_64")
	require.NoError(t, pipeline.Run(ctx, &flatKind{shellKind: kind, publish: kindPublish}))

	_, err = os.Stat(filepath.Join(buildCtx.BuildRoot, "demo"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(buildCtx.BuildRoot, "resources", "strings.txt"))
	require.NoError(t, err)
}

// flatKind overrides PublishBin for Windows-style flat staging.
type flatKind struct {
	*shellKind
	publish string
}

func (f *flatKind) PublishBin() string { return f.publish }
