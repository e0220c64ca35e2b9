package pack

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout carries the inputs needed to compute a BuildContext. Values are
// assembled by the caller from configuration and CLI arguments.
type Layout struct {
	// Kind is the target package format.
	Kind Kind
	// AppID is the application identifier in reverse-domain notation.
	AppID string
	// AppBaseName is the short application name used for files and binaries.
	AppBaseName string
	// VersionRelease is the raw "X.Y.Z[release]" version string.
	VersionRelease string
	// Arch is the target architecture (x86_64, aarch64, ...).
	Arch string
	// BuildID distinguishes concurrent invocations sharing one global root.
	BuildID string
	// GlobalRoot is the temp-directory namespace under which pack roots live.
	GlobalRoot string
	// OutputDirectory is the configured directory for final artifacts.
	OutputDirectory string
	// Output is an optional caller-supplied output path override.
	Output string
	// AppendVersion includes the version-release segment in a synthesized
	// output name.
	AppendVersion bool
	// HasDesktopEntry reports whether desktop-entry content is configured.
	HasDesktopEntry bool
	// HasMetaInfo reports whether AppStream metainfo content is configured.
	HasMetaInfo bool
}

// BuildContext is the immutable per-invocation description of where a build
// stages its tree and where the final artifact lands. It is created once,
// never mutated, and discarded when the run completes or fails.
type BuildContext struct {
	// Kind is the target package format.
	Kind Kind
	// AppID is the application identifier in reverse-domain notation.
	AppID string
	// AppBaseName is the short application name.
	AppBaseName string
	// AppVersion is the version part of the configured version string.
	AppVersion string
	// PackRelease is the release part, defaulting to "1".
	PackRelease string
	// Arch is the target architecture.
	Arch string

	// PackRoot is the unique temporary directory owned by this run.
	PackRoot string
	// BuildRoot is the staging tree that becomes the installed application.
	BuildRoot string

	// FHS sub-paths, empty for Windows kinds where no usr/share tree applies.
	UsrBin            string
	UsrShare          string
	ShareMeta         string
	ShareApplications string
	ShareIcons        string

	// DesktopPath is where the desktop entry is written; empty means the
	// file is not produced for this run.
	DesktopPath string
	// MetaInfoPath is where the AppStream metainfo is written; empty means
	// the file is not produced for this run.
	MetaInfoPath string

	// OutputDirectory is the resolved directory for the final artifact.
	OutputDirectory string
	// OutputName is the resolved artifact file name.
	OutputName string
}

// NewBuildContext computes the staging layout and output location for one
// package build. It performs no filesystem writes.
func NewBuildContext(in Layout) (*BuildContext, error) {
	if in.AppID == "" {
		return nil, &ConfigError{Field: "app_id", Reason: "must not be empty"}
	}

	if in.AppBaseName == "" {
		return nil, &ConfigError{Field: "app_base_name", Reason: "must not be empty"}
	}

	version, release := SplitVersionRelease(in.VersionRelease)

	outputDir, outputName, err := resolveOutput(in, version, release)
	if err != nil {
		return nil, err
	}

	packRoot := filepath.Join(in.GlobalRoot,
		fmt.Sprintf("%s-%s-%s-%s", in.AppID, in.Arch, in.BuildID, in.Kind))
	buildRoot := filepath.Join(packRoot, in.Kind.StagingDirName())

	ctx := &BuildContext{
		Kind:            in.Kind,
		AppID:           in.AppID,
		AppBaseName:     in.AppBaseName,
		AppVersion:      version,
		PackRelease:     release,
		Arch:            in.Arch,
		PackRoot:        packRoot,
		BuildRoot:       buildRoot,
		OutputDirectory: outputDir,
		OutputName:      outputName,
	}

	if !in.Kind.IsWindows() {
		ctx.UsrBin = filepath.Join(buildRoot, "usr", "bin")
		ctx.UsrShare = filepath.Join(buildRoot, "usr", "share")
		ctx.ShareMeta = filepath.Join(ctx.UsrShare, "metainfo")
		ctx.ShareApplications = filepath.Join(ctx.UsrShare, "applications")
		ctx.ShareIcons = filepath.Join(ctx.UsrShare, "icons")
	}

	if in.HasDesktopEntry && ctx.ShareApplications != "" {
		ctx.DesktopPath = filepath.Join(ctx.ShareApplications, in.AppID+".desktop")
	}

	if in.HasMetaInfo && ctx.ShareMeta != "" {
		ctx.MetaInfoPath = filepath.Join(ctx.ShareMeta, in.AppID+".metainfo.xml")
	}

	return ctx, nil
}

// OutputPath returns the full path of the final artifact.
func (c *BuildContext) OutputPath() string {
	return filepath.Join(c.OutputDirectory, c.OutputName)
}

// resolveOutput computes the artifact directory and file name. An explicit
// output override is used verbatim when fully qualified, otherwise it is
// resolved against the configured output directory. A missing file name is
// synthesized as {base}[-{version}-{release}].{arch}.{ext}.
func resolveOutput(in Layout, version, release string) (string, string, error) {
	outputDir := in.OutputDirectory
	if outputDir == "" {
		outputDir = "."
	}

	outputName := ""

	if in.Output != "" {
		dir, name := filepath.Split(in.Output)

		switch {
		case filepath.IsAbs(in.Output):
			outputDir = filepath.Clean(dir)
		case dir != "":
			outputDir = filepath.Join(outputDir, dir)
		}

		outputName = name
	}

	if strings.ContainsRune(outputDir, 0) || strings.ContainsRune(outputName, 0) {
		return "", "", &ConfigError{Field: "output", Reason: "path contains invalid characters"}
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", "", &ConfigError{Field: "output", Reason: err.Error()}
	}

	if outputName == "" {
		outputName = synthesizeOutputName(in, version, release)
	}

	return absDir, outputName, nil
}

// synthesizeOutputName builds the default artifact name. The version
// segment is included only when a version is present and the append-version
// option is enabled.
func synthesizeOutputName(in Layout, version, release string) string {
	name := in.AppBaseName
	if in.AppendVersion && version != "" {
		name += "-" + version + "-" + release
	}

	return name + "." + in.Arch + in.Kind.ArtifactExtension()
}
