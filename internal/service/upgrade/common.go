package upgrade

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// ManifestFilename is the release manifest fetched from the upgrade
	// folder.
	ManifestFilename = "pack-forge-release.yaml"

	// MarkerFilename marks that an upgrade is running right now to avoid
	// parallel execution.
	MarkerFilename = "pack-forge-upgrade-marker.bin"

	// DefaultFileMode is applied to the replaced binary.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to verify downloaded binaries.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// markerLifetime is the period after which a stale upgrade marker is
	// ignored.
	markerLifetime = 30 * time.Second

	// downloadTimeout bounds manifest and binary fetches.
	downloadTimeout = 5 * time.Minute

	// baseExecutable is the binary name without platform decoration.
	baseExecutable = "pack-forge"
)

// Release describes a published pack-forge build.
type Release struct {
	// VersionNumber is the semantic version of the release.
	VersionNumber string `yaml:"version"`
	// Files maps platform binary names to their base64-encoded SHA-512
	// checksums.
	Files map[string]string `yaml:"files"`
}

// GetFileChecksum returns checksum bytes for a file using
// DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return ChecksumBytes(contents)
}

// ChecksumBytes returns the checksum of in-memory contents.
func ChecksumBytes(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// PlatformBinaryName is the manifest key for the current platform, e.g.
// "pack-forge-linux-amd64" or "pack-forge-windows-amd64.exe".
func PlatformBinaryName() string {
	return baseExecutable + "-" + runtime.GOOS + "-" + runtime.GOARCH + executableExtension()
}

// executableName is the local binary name used for stale-guard recovery.
func executableName() string {
	return baseExecutable + executableExtension()
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
