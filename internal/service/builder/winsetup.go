package builder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// winSetupScriptTemplate is the Inno Setup script compiled by iscc. The
// output base name is injected without its extension because iscc appends
// .exe itself.
const winSetupScriptTemplate = `[Setup]
AppId=${APP_ID}
AppName=${APP_FRIENDLY_NAME}
AppVersion=${APP_VERSION}
AppPublisher=${APP_VENDOR}
AppPublisherURL=${APP_URL}
DefaultDirName={autopf}\${APP_FRIENDLY_NAME}
DisableProgramGroupPage=yes
OutputDir=${OUTPUT_DIR}
OutputBaseFilename=%s
%s
[Files]
Source: "${BUILD_ROOT}\*"; DestDir: "{app}"; Flags: ignoreversion recursesubdirs

[Icons]
Name: "{autoprograms}\${APP_FRIENDLY_NAME}"; Filename: "{app}\${DESKTOP_EXEC}"
`

// winSetupBuilder produces a Windows setup executable with the Inno Setup
// compiler. The layout is flat: no FHS tree, no desktop entry, no icon map.
type winSetupBuilder struct {
	base
}

// Kind identifies the target package format.
func (b *winSetupBuilder) Kind() pack.Kind {
	return pack.KindWinSetup
}

// DesktopExec is the installed executable name referenced by shortcuts.
func (b *winSetupBuilder) DesktopExec() string {
	return b.buildCtx.AppBaseName + ".exe"
}

// PublishBin is the build root itself: the Windows layout is flat.
func (b *winSetupBuilder) PublishBin() string {
	return b.buildCtx.BuildRoot
}

// ManifestPath locates the setup script under the pack root.
func (b *winSetupBuilder) ManifestPath() string {
	return filepath.Join(b.buildCtx.PackRoot, b.buildCtx.AppBaseName+".iss")
}

// ManifestContent renders the setup script. The setup icon directive is
// emitted only when a prime .ico was resolved.
func (b *winSetupBuilder) ManifestContent() (string, error) {
	baseName := strings.TrimSuffix(b.buildCtx.OutputName, b.buildCtx.Kind.ArtifactExtension())

	iconDirective := ""
	if b.icons.PrimeStaged != "" {
		iconDirective = "SetupIconFile=${PRIME_ICON}\n"
	}

	return fmt.Sprintf(winSetupScriptTemplate, baseName, iconDirective), nil
}

// BuildCommands compiles the setup script.
func (b *winSetupBuilder) BuildCommands() []string {
	return []string{
		fmt.Sprintf("iscc %q", b.ManifestPath()),
	}
}
