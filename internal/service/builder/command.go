package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
	"github.com/okarpov/pack-forge/internal/logger"
	"github.com/okarpov/pack-forge/internal/repository/stage"
	"github.com/okarpov/pack-forge/internal/service/common"
)

// Options contains inputs for the builder entry point.
type Options struct {
	// ConfigPath is an optional path to the project file (defaults to
	// pack-forge.yaml).
	ConfigPath string
	// Kind names the target package format.
	Kind string
	// Arch overrides the configured target architecture.
	Arch string
	// Runtime is the runtime identifier bound to ${BUILD_TARGET};
	// defaults to "<os>-<arch>".
	Runtime string
	// Output overrides the artifact path. Absolute paths are used
	// verbatim; relative ones resolve against the configured output
	// directory.
	Output string
	// NoVersionName drops the version segment from synthesized artifact
	// names.
	NoVersionName bool
	// GlobalRoot is the temp-directory namespace for pack roots; defaults
	// to <system-temp>/pack-forge.
	GlobalRoot string
	// BuildID distinguishes concurrent invocations sharing one global
	// root. Defaults to "local".
	BuildID string
}

// Run executes one package build end to end: configuration, layout, icon
// resolution, run guard, then the staged pipeline.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "builder")

	kind, err := pack.ParseKind(opts.Kind)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	applyOverrides(cfg, opts)

	buildCtx, icons, err := resolveBuild(cfg, opts, kind)
	if err != nil {
		return err
	}

	kindBuilder, err := NewKindBuilder(buildCtx, cfg, icons)
	if err != nil {
		return err
	}

	// Two runs with an identical pack-root key must not work the same
	// tree at once.
	guard := common.NewRunGuard(MarkerPath(buildCtx), processName(), 0)

	release, err := guard.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire run guard: %w", err)
	}

	defer release()

	logger.InfoKV(ctx, "Building package",
		"kind", kind.String(),
		"app", buildCtx.AppID,
		"version", buildCtx.AppVersion,
		"release", buildCtx.PackRelease,
		"pack_root", buildCtx.PackRoot)

	pipeline := NewPipeline(buildCtx, cfg, icons, stage.NewDiskStager(), targetIdentifier(cfg, opts))

	if err = pipeline.Run(ctx, kindBuilder); err != nil {
		return fmt.Errorf("build %s package: %w", kind, err)
	}

	logger.InfoKV(ctx, "Package built", "artifact", buildCtx.OutputPath())

	return nil
}

// applyOverrides merges CLI arguments over the loaded configuration.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Arch != "" {
		cfg.Arch = opts.Arch
	}

	if opts.NoVersionName {
		cfg.AppendVersion = false
	}
}

// resolveBuild computes the build context and icon set for this run.
func resolveBuild(cfg *config.Config, opts *Options, kind pack.Kind) (*pack.BuildContext, *pack.IconSet, error) {
	desktopText, err := cfg.DesktopText()
	if err != nil {
		return nil, nil, err
	}

	metaText, err := cfg.MetaInfoText()
	if err != nil {
		return nil, nil, err
	}

	globalRoot := opts.GlobalRoot
	if globalRoot == "" {
		globalRoot = filepath.Join(os.TempDir(), "pack-forge")
	}

	buildID := opts.BuildID
	if buildID == "" {
		buildID = "local"
	}

	buildCtx, err := pack.NewBuildContext(pack.Layout{
		Kind:            kind,
		AppID:           cfg.AppID,
		AppBaseName:     cfg.AppBaseName,
		VersionRelease:  cfg.AppVersionRelease,
		Arch:            cfg.Arch,
		BuildID:         buildID,
		GlobalRoot:      globalRoot,
		OutputDirectory: cfg.OutputDirectory,
		Output:          opts.Output,
		AppendVersion:   cfg.AppendVersion,
		HasDesktopEntry: strings.TrimSpace(desktopText) != "",
		HasMetaInfo:     strings.TrimSpace(metaText) != "",
	})
	if err != nil {
		return nil, nil, err
	}

	candidates := cfg.Icons
	if len(candidates) == 0 {
		candidates = existingDefaultIcons()
	}

	icons, err := pack.ResolveIcons(candidates, buildCtx)
	if err != nil {
		return nil, nil, err
	}

	return buildCtx, icons, nil
}

// targetIdentifier returns the runtime identifier for ${BUILD_TARGET}.
func targetIdentifier(cfg *config.Config, opts *Options) string {
	if opts.Runtime != "" {
		return opts.Runtime
	}

	return runtime.GOOS + "-" + cfg.Arch
}

// defaultIconCandidates is the built-in icon set used when the project
// configures none, resolved relative to the working directory.
func defaultIconCandidates() []string {
	return []string{
		filepath.Join("assets", "icon.svg"),
		filepath.Join("assets", "icon.32x32.png"),
		filepath.Join("assets", "icon.64x64.png"),
		filepath.Join("assets", "icon.128x128.png"),
		filepath.Join("assets", "icon.256x256.png"),
		filepath.Join("assets", "icon.ico"),
	}
}

// existingDefaultIcons filters the built-in candidates to files actually
// present, so projects without bundled assets simply build without icons.
func existingDefaultIcons() []string {
	var present []string

	for _, candidate := range defaultIconCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			present = append(present, candidate)
		}
	}

	return present
}

// processName is the executable name used for stale-guard recovery.
func processName() string {
	name := "pack-forge"
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		name += ".exe"
	}

	return name
}
