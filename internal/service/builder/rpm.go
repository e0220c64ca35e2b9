package builder

import (
	"fmt"
	"path/filepath"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// rpmSpecTemplate is the spec file consumed by rpmbuild. The staged tree
// already matches the installed layout, so %files claims the whole /usr
// prefix.
const rpmSpecTemplate = `Name: ${APP_BASE_NAME}
Version: ${APP_VERSION}
Release: ${PACK_RELEASE}
Summary: ${APP_SUMMARY}
License: ${APP_LICENSE}
Vendor: ${APP_VENDOR}
URL: ${APP_URL}
BuildArch: ${BUILD_ARCH}

%define _build_id_links none

%description
${APP_SUMMARY}

%files
/usr
`

// rpmBuilder produces an RPM package with rpmbuild.
type rpmBuilder struct {
	base
}

// Kind identifies the target package format.
func (b *rpmBuilder) Kind() pack.Kind {
	return pack.KindRpm
}

// DesktopExec is the installed launcher path.
func (b *rpmBuilder) DesktopExec() string {
	return b.installedBinPath()
}

// PublishBin places the application tree under usr/bin in the staging root.
func (b *rpmBuilder) PublishBin() string {
	return b.buildCtx.UsrBin
}

// ManifestPath locates the spec file under the pack root, outside the
// staged tree so it does not become part of the package payload.
func (b *rpmBuilder) ManifestPath() string {
	return filepath.Join(b.buildCtx.PackRoot, b.buildCtx.AppBaseName+".spec")
}

// ManifestContent renders the spec template.
func (b *rpmBuilder) ManifestContent() (string, error) {
	return rpmSpecTemplate, nil
}

// BuildCommands runs rpmbuild against the staged tree, then moves the
// artifact from rpmbuild's arch subdirectory to the resolved output path.
func (b *rpmBuilder) BuildCommands() []string {
	return []string{
		fmt.Sprintf(`rpmbuild -bb %q --buildroot "${BUILD_ROOT}"`+
			` --define "_topdir ${BUILD_ROOT}/../rpmbuild"`+
			` --define "_rpmdir ${OUTPUT_DIR}" --target ${BUILD_ARCH}`,
			b.ManifestPath()),
		`mv -f "${OUTPUT_DIR}/${BUILD_ARCH}/"*.rpm "${OUTPUT_PATH}"`,
	}
}
