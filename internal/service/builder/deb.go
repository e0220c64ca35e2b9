package builder

import (
	"fmt"
	"path/filepath"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// debControlTemplate is the DEBIAN/control file driven by the macro table.
// The architecture is injected separately because dpkg uses its own
// notation (amd64, arm64) rather than the packaging one.
const debControlTemplate = `Package: ${APP_BASE_NAME}
Version: ${APP_VERSION}-${PACK_RELEASE}
Architecture: %s
Maintainer: ${APP_VENDOR}
Homepage: ${APP_URL}
Description: ${APP_SUMMARY}
`

// debBuilder produces a Debian package with dpkg-deb.
type debBuilder struct {
	base
}

// Kind identifies the target package format.
func (b *debBuilder) Kind() pack.Kind {
	return pack.KindDeb
}

// DesktopExec is the installed launcher path.
func (b *debBuilder) DesktopExec() string {
	return b.installedBinPath()
}

// PublishBin places the application tree under usr/bin in the staging root.
func (b *debBuilder) PublishBin() string {
	return b.buildCtx.UsrBin
}

// ManifestPath locates the control file inside the staging tree, where
// dpkg-deb expects it.
func (b *debBuilder) ManifestPath() string {
	return filepath.Join(b.buildCtx.BuildRoot, "DEBIAN", "control")
}

// ManifestContent renders the control template.
func (b *debBuilder) ManifestContent() (string, error) {
	return fmt.Sprintf(debControlTemplate, debArch(b.buildCtx.Arch)), nil
}

// BuildCommands packs the staged tree into the final .deb.
func (b *debBuilder) BuildCommands() []string {
	return []string{
		`dpkg-deb --build --root-owner-group "${BUILD_ROOT}" "${OUTPUT_PATH}"`,
	}
}

// debArch maps packaging architecture notation to dpkg notation.
func debArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	case "i686":
		return "i386"
	default:
		return arch
	}
}
