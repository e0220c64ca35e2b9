package builder

import (
	"context"
	"path/filepath"
	"time"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
	"github.com/okarpov/pack-forge/internal/logger"
	"github.com/okarpov/pack-forge/internal/repository/stage"
	"github.com/okarpov/pack-forge/internal/service/common"
)

// KindBuilder supplies the format-specific pieces of one package build.
// Implementations are stateless over an immutable BuildContext; the
// Pipeline owns step ordering.
type KindBuilder interface {
	// Kind identifies the target package format.
	Kind() pack.Kind
	// DesktopExec is the path embedded in the desktop entry's Exec= line.
	DesktopExec() string
	// PublishBin is where upstream publish output lands, always under the
	// build root.
	PublishBin() string
	// ManifestPath is where the kind-specific manifest is written; empty
	// means the kind has no manifest file.
	ManifestPath() string
	// ManifestContent is the manifest template text, possibly containing
	// macros.
	ManifestContent() (string, error)
	// BuildCommands returns the ordered external commands that produce the
	// final artifact. Commands may contain macros; they are expanded
	// immediately before execution.
	BuildCommands() []string
}

// runShellFunc matches common.RunShell and exists so tests can intercept
// command execution.
type runShellFunc func(ctx context.Context, dir, command string) (string, error)

// Pipeline runs the generic build sequence against a staged tree.
type Pipeline struct {
	// buildCtx is the immutable layout for this run.
	buildCtx *pack.BuildContext
	// cfg is the read-only project configuration.
	cfg *config.Config
	// icons is the resolved icon set for this run.
	icons *pack.IconSet
	// stager performs filesystem writes.
	stager stage.Stager
	// target is the runtime identifier bound to ${BUILD_TARGET}.
	target string
	// runShell executes external commands.
	runShell runShellFunc
	// now supplies the build timestamp; overridable in tests.
	now func() time.Time
}

// NewPipeline assembles a pipeline over the provided collaborators.
func NewPipeline(buildCtx *pack.BuildContext, cfg *config.Config, icons *pack.IconSet, stager stage.Stager, target string) *Pipeline {
	return &Pipeline{
		buildCtx: buildCtx,
		cfg:      cfg,
		icons:    icons,
		stager:   stager,
		target:   target,
		runShell: common.RunShell,
		now:      time.Now,
	}
}

// Run performs the build steps in fixed order: publish-tree copy, desktop
// entry, metainfo, manifest, prime icon, icon map, then the kind's build
// commands. The first failure aborts the sequence; the staging tree is
// left in place for diagnosis.
func (p *Pipeline) Run(ctx context.Context, kb KindBuilder) error {
	macros := p.macroTable(kb)

	if err := p.stager.EnsureDir(ctx, p.buildCtx.BuildRoot); err != nil {
		return err
	}

	if err := p.stagePublishTree(ctx, kb); err != nil {
		return err
	}

	if err := p.stageTemplates(ctx, kb, macros); err != nil {
		return err
	}

	if err := p.stageIcons(ctx); err != nil {
		return err
	}

	// External tools expect the artifact directory to exist.
	if err := p.stager.EnsureDir(ctx, p.buildCtx.OutputDirectory); err != nil {
		return err
	}

	return p.executeCommands(ctx, kb, macros)
}

// stagePublishTree copies the upstream publish output under PublishBin.
func (p *Pipeline) stagePublishTree(ctx context.Context, kb KindBuilder) error {
	if p.cfg.PublishDir == "" {
		return nil
	}

	logger.InfoKV(ctx, "Staging publish output",
		"source", p.cfg.PublishDir, "destination", kb.PublishBin())

	return p.stager.CopyTree(ctx, p.cfg.PublishDir, kb.PublishBin())
}

// stageTemplates expands and writes the desktop entry, metainfo and
// manifest files. Absent paths mean the file is skipped for this run.
// Templates are expanded strictly: an unrecognized token is a build error.
func (p *Pipeline) stageTemplates(ctx context.Context, kb KindBuilder, macros pack.Macros) error {
	if p.buildCtx.DesktopPath != "" {
		text, err := p.cfg.DesktopText()
		if err != nil {
			return err
		}

		if err = p.expandAndWrite(ctx, macros, "desktop entry", p.buildCtx.DesktopPath, text); err != nil {
			return err
		}
	}

	if p.buildCtx.MetaInfoPath != "" {
		text, err := p.cfg.MetaInfoText()
		if err != nil {
			return err
		}

		if err = p.expandAndWrite(ctx, macros, "metainfo", p.buildCtx.MetaInfoPath, text); err != nil {
			return err
		}
	}

	if kb.ManifestPath() == "" {
		return nil
	}

	manifest, err := kb.ManifestContent()
	if err != nil {
		return err
	}

	return p.expandAndWrite(ctx, macros, "manifest", kb.ManifestPath(), manifest)
}

// expandAndWrite expands text strictly and writes the result to path.
func (p *Pipeline) expandAndWrite(ctx context.Context, macros pack.Macros, source, path, text string) error {
	expanded, err := macros.Expand(source, text)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Writing "+source, "path", path)

	return p.stager.WriteText(ctx, path, expanded)
}

// stageIcons copies the prime icon and every icon-map entry.
func (p *Pipeline) stageIcons(ctx context.Context) error {
	if p.icons.PrimeSource != "" && p.icons.PrimeStaged != "" {
		logger.InfoKV(ctx, "Staging prime icon",
			"source", p.icons.PrimeSource, "destination", p.icons.PrimeStaged)

		if err := p.stager.CopyFile(ctx, p.icons.PrimeSource, p.icons.PrimeStaged); err != nil {
			return err
		}
	}

	for _, entry := range p.icons.Entries {
		if err := p.stager.CopyFile(ctx, entry.Source, entry.Staged); err != nil {
			return err
		}
	}

	return nil
}

// executeCommands expands and runs the kind's build commands in declared
// order, aborting on the first non-zero exit.
func (p *Pipeline) executeCommands(ctx context.Context, kb KindBuilder, macros pack.Macros) error {
	for _, command := range kb.BuildCommands() {
		expanded, err := macros.Expand("build command", command)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Running build command", "command", expanded)

		output, err := p.runShell(ctx, p.buildCtx.PackRoot, expanded)
		if err != nil {
			return err
		}

		logger.Debugf(ctx, "Command output:\n%s", output)
	}

	return nil
}

// macroTable binds the stable macro names for this run. Token names are a
// contract with user templates and must never be renamed.
func (p *Pipeline) macroTable(kb KindBuilder) pack.Macros {
	isoDate := p.now().UTC().Format("2006-01-02")

	return pack.Macros{
		"APP_BASE_NAME":     p.buildCtx.AppBaseName,
		"APP_FRIENDLY_NAME": p.cfg.AppFriendlyName,
		"APP_ID":            p.buildCtx.AppID,
		"APP_SUMMARY":       p.cfg.AppSummary,
		"APP_LICENSE":       p.cfg.AppLicense,
		"APP_VENDOR":        p.cfg.AppVendor,
		"APP_URL":           p.cfg.AppURL,
		"APP_VERSION":       p.buildCtx.AppVersion,
		"PACK_RELEASE":      p.buildCtx.PackRelease,
		"PACK_KIND":         p.buildCtx.Kind.String(),
		"BUILD_ARCH":        p.buildCtx.Arch,
		"BUILD_TARGET":      p.target,
		"BUILD_DATE":        isoDate,
		"ISO_DATE":          isoDate,
		"BUILD_ROOT":        p.buildCtx.BuildRoot,
		"BUILD_SHARE":       p.buildCtx.UsrShare,
		"OUTPUT_DIR":        p.buildCtx.OutputDirectory,
		"OUTPUT_NAME":       p.buildCtx.OutputName,
		"OUTPUT_PATH":       p.buildCtx.OutputPath(),
		"PUBLISH_BIN":       kb.PublishBin(),
		"DESKTOP_EXEC":      kb.DesktopExec(),
		"PRIME_ICON":        p.icons.PrimeStaged,
	}
}

// markerFilename is the run-guard marker inside the pack root.
const markerFilename = ".pack-forge-run.bin"

// MarkerPath returns the run-guard marker location for a build context.
func MarkerPath(buildCtx *pack.BuildContext) string {
	return filepath.Join(buildCtx.PackRoot, markerFilename)
}
