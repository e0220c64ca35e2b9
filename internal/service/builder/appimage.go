package builder

import (
	"path/filepath"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// appImageBuilder produces an AppImage with appimagetool. The kind has no
// manifest file; appimagetool reads the desktop entry and top-level icon
// straight from the AppDir.
type appImageBuilder struct {
	base
}

// Kind identifies the target package format.
func (b *appImageBuilder) Kind() pack.Kind {
	return pack.KindAppImage
}

// DesktopExec is the bare command name; AppRun resolves it inside the
// mounted image.
func (b *appImageBuilder) DesktopExec() string {
	return b.buildCtx.AppBaseName
}

// PublishBin places the application tree under usr/bin in the AppDir.
func (b *appImageBuilder) PublishBin() string {
	return b.buildCtx.UsrBin
}

// ManifestPath is empty: AppImage needs no manifest file.
func (b *appImageBuilder) ManifestPath() string {
	return ""
}

// ManifestContent is unused for this kind.
func (b *appImageBuilder) ManifestContent() (string, error) {
	return "", nil
}

// BuildCommands arranges the AppDir entry points, then invokes
// appimagetool. The desktop-entry and icon steps are emitted only when the
// corresponding files were staged.
func (b *appImageBuilder) BuildCommands() []string {
	commands := []string{
		`ln -sf "usr/bin/${APP_BASE_NAME}" "${BUILD_ROOT}/AppRun"`,
	}

	if b.buildCtx.DesktopPath != "" {
		commands = append(commands,
			`cp "${BUILD_SHARE}/applications/${APP_ID}.desktop" "${BUILD_ROOT}/"`)
	}

	if b.icons.PrimeStaged != "" {
		iconName := filepath.Base(b.icons.PrimeStaged)
		commands = append(commands,
			`cp "${PRIME_ICON}" "${BUILD_ROOT}/"`,
			`ln -sf "`+iconName+`" "${BUILD_ROOT}/.DirIcon"`)
	}

	commands = append(commands,
		`ARCH=${BUILD_ARCH} appimagetool "${BUILD_ROOT}" "${OUTPUT_PATH}"`)

	return commands
}
