package builder

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// Flatpak platform defaults. Overridable later if a project needs a
// different runtime; every corpus manifest targets freedesktop.
const (
	flatpakRuntime        = "org.freedesktop.Platform"
	flatpakRuntimeVersion = "23.08"
	flatpakSdk            = "org.freedesktop.Sdk"
)

// flatpakManifest mirrors the flatpak-builder manifest schema for the
// fields this pipeline needs.
type flatpakManifest struct {
	ID             string          `yaml:"app-id"`
	Runtime        string          `yaml:"runtime"`
	RuntimeVersion string          `yaml:"runtime-version"`
	Sdk            string          `yaml:"sdk"`
	Command        string          `yaml:"command"`
	FinishArgs     []string        `yaml:"finish-args"`
	Modules        []flatpakModule `yaml:"modules"`
}

// flatpakModule is a single simple-buildsystem module copying the staged
// tree into the sandbox prefix.
type flatpakModule struct {
	Name          string          `yaml:"name"`
	Buildsystem   string          `yaml:"buildsystem"`
	BuildCommands []string        `yaml:"build-commands"`
	Sources       []flatpakSource `yaml:"sources"`
}

// flatpakSource references the staged tree by directory.
type flatpakSource struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// flatpakBuilder produces a flatpak bundle via flatpak-builder.
type flatpakBuilder struct {
	base
}

// Kind identifies the target package format.
func (b *flatpakBuilder) Kind() pack.Kind {
	return pack.KindFlatpak
}

// DesktopExec is the command name exported inside the sandbox.
func (b *flatpakBuilder) DesktopExec() string {
	return b.buildCtx.AppBaseName
}

// PublishBin places the application tree under usr/bin in the staging root.
func (b *flatpakBuilder) PublishBin() string {
	return b.buildCtx.UsrBin
}

// ManifestPath locates the generated manifest under the pack root.
func (b *flatpakBuilder) ManifestPath() string {
	return filepath.Join(b.buildCtx.PackRoot, b.buildCtx.AppID+".yml")
}

// ManifestContent serializes the manifest. The staged tree is referenced
// relative to the pack root, which is also the working directory of the
// build commands.
func (b *flatpakBuilder) ManifestContent() (string, error) {
	manifest := flatpakManifest{
		ID:             b.buildCtx.AppID,
		Runtime:        flatpakRuntime,
		RuntimeVersion: flatpakRuntimeVersion,
		Sdk:            flatpakSdk,
		Command:        b.buildCtx.AppBaseName,
		FinishArgs: []string{
			"--socket=wayland",
			"--socket=fallback-x11",
			"--share=ipc",
		},
		Modules: []flatpakModule{
			{
				Name:        b.buildCtx.AppBaseName,
				Buildsystem: "simple",
				BuildCommands: []string{
					"mkdir -p /app/bin /app/share",
					"cp -r usr/bin/. /app/bin/",
					"cp -r usr/share/. /app/share/",
				},
				Sources: []flatpakSource{
					{Type: "dir", Path: b.buildCtx.Kind.StagingDirName()},
				},
			},
		},
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return "", fmt.Errorf("marshal flatpak manifest: %w", err)
	}

	return string(data), nil
}

// BuildCommands builds the sandbox into a local repo and bundles it.
func (b *flatpakBuilder) BuildCommands() []string {
	return []string{
		fmt.Sprintf(`flatpak-builder --arch ${BUILD_ARCH} --force-clean --repo repo flatpak-build %q`,
			b.ManifestPath()),
		`flatpak build-bundle --arch ${BUILD_ARCH} repo "${OUTPUT_PATH}" ${APP_ID}`,
	}
}
