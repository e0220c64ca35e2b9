package pack

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a target installer format.
type Kind string

// Supported package kinds.
const (
	// KindDeb produces a Debian package via dpkg-deb.
	KindDeb Kind = "deb"
	// KindRpm produces an RPM package via rpmbuild.
	KindRpm Kind = "rpm"
	// KindFlatpak produces a flatpak bundle via flatpak-builder.
	KindFlatpak Kind = "flatpak"
	// KindAppImage produces an AppImage via appimagetool.
	KindAppImage Kind = "appimage"
	// KindWinSetup produces a Windows setup executable via the Inno Setup compiler.
	KindWinSetup Kind = "winsetup"
)

// errUnknownKind is returned when a kind name cannot be resolved.
var errUnknownKind = fmt.Errorf("unknown package kind")

// allKinds lists every supported kind in canonical order.
var allKinds = []Kind{KindDeb, KindRpm, KindFlatpak, KindAppImage, KindWinSetup}

// ParseKind resolves a case-insensitive kind name to a Kind.
func ParseKind(name string) (Kind, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, kind := range allKinds {
		if kind == normalized {
			return kind, nil
		}
	}

	return "", fmt.Errorf("%w: %q (expected one of %s)", errUnknownKind, name, strings.Join(KindNames(), ", "))
}

// KindNames returns the canonical names of all supported kinds, sorted.
func KindNames() []string {
	names := make([]string, 0, len(allKinds))
	for _, kind := range allKinds {
		names = append(names, string(kind))
	}

	sort.Strings(names)

	return names
}

// String returns the canonical kind name.
func (k Kind) String() string {
	return string(k)
}

// IsWindows reports whether the kind uses the flat Windows layout
// instead of the FHS usr/share tree.
func (k Kind) IsWindows() bool {
	return k == KindWinSetup
}

// ArtifactExtension returns the file extension of the final artifact,
// including the leading dot.
func (k Kind) ArtifactExtension() string {
	switch k {
	case KindAppImage:
		return ".AppImage"
	case KindWinSetup:
		return ".exe"
	default:
		return "." + strings.ToLower(string(k))
	}
}

// StagingDirName returns the name of the build root directory under the
// pack root. AppImage tooling expects the conventional AppDir name.
func (k Kind) StagingDirName() string {
	if k == KindAppImage {
		return "AppDir"
	}

	return "BuildRoot"
}
