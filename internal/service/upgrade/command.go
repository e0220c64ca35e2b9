package upgrade

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/logger"
	"github.com/okarpov/pack-forge/internal/service/common"
	"github.com/okarpov/pack-forge/internal/version"
)

var (
	errNoUpgradeFolder  = errors.New("upgrade folder is not configured")
	errBadHTTPStatus    = errors.New("unexpected http status")
	errNoPlatformBinary = errors.New("release has no binary for this platform")
	errNoChecksum       = errors.New("checksum missing for binary")
	errChecksumMismatch = errors.New("downloaded binary checksum mismatch")
)

// oldVersionSuffix is the leftover file go-update keeps next to the
// replaced binary.
const oldVersionSuffix = ".old"

// Options are inputs accepted by the upgrade entry point.
type Options struct {
	// ConfigPath is the optional path to the project settings file.
	ConfigPath string
	// Folder overrides the upgrade folder URL from the settings file.
	Folder string
}

// runner holds the state of a single upgrade execution. It is
// intentionally unexported; call Run(ctx, opts) from callers.
type runner struct {
	folder  string
	client  *http.Client
	release *Release
}

// Run checks the release manifest in the upgrade folder and replaces the
// running binary when a newer version is published.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "upgrade")

	folder, err := resolveFolder(opts)
	if err != nil {
		return err
	}

	guard := common.NewRunGuard(
		filepath.Join(os.TempDir(), MarkerFilename),
		executableName(),
		markerLifetime)

	releaseMarker, err := guard.Acquire(ctx)
	if err != nil {
		return err
	}

	defer releaseMarker()

	u := &runner{
		folder: folder,
		client: &http.Client{Timeout: downloadTimeout},
	}

	if err = u.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Upgrade failed", "error", err)
		return err
	}

	return nil
}

// resolveFolder picks the upgrade folder from the flag or the settings
// file. The flag wins; the settings file is only consulted when needed.
func resolveFolder(opts *Options) (string, error) {
	if folder := strings.TrimSpace(opts.Folder); folder != "" {
		return folder, nil
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}

	if cfg.UpgradeFolder == "" {
		return "", errNoUpgradeFolder
	}

	return cfg.UpgradeFolder, nil
}

// run executes the upgrade workflow:
// 1) Fetch the release manifest.
// 2) Compare the published version with the running one.
// 3) Download the platform binary.
// 4) Verify its checksum and apply it in place.
func (u *runner) run(ctx context.Context) error {
	logger.InfoKV(ctx, "Fetching release manifest", "folder", u.folder)

	if err := u.fetchRelease(ctx); err != nil {
		return fmt.Errorf("fetch release manifest: %w", err)
	}

	needed, err := needsUpgrade(version.Short(), u.release.VersionNumber)
	if err != nil {
		return fmt.Errorf("compare versions: %w", err)
	}

	if !needed {
		logger.InfoKV(ctx, "Already up to date", "version", version.Short())
		return nil
	}

	logger.InfoKV(ctx, "Newer version published",
		"local", version.Short(), "remote", u.release.VersionNumber)

	contents, expected, err := u.downloadBinary(ctx)
	if err != nil {
		return fmt.Errorf("download binary: %w", err)
	}

	if err = u.applyBinary(ctx, contents, expected); err != nil {
		return fmt.Errorf("apply binary: %w", err)
	}

	logger.InfoKV(ctx, "Upgrade completed", "version", u.release.VersionNumber)

	return nil
}

// fetchRelease downloads and parses the release manifest.
func (u *runner) fetchRelease(ctx context.Context) error {
	contents, err := u.fetch(ctx, ManifestFilename)
	if err != nil {
		return err
	}

	var release Release
	if err = yaml.Unmarshal(contents, &release); err != nil {
		return err
	}

	u.release = &release

	return nil
}

// downloadBinary fetches the platform binary and decodes its expected
// checksum from the manifest.
func (u *runner) downloadBinary(ctx context.Context) ([]byte, []byte, error) {
	binaryName := PlatformBinaryName()

	encoded, ok := u.release.Files[binaryName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", errNoPlatformBinary, binaryName)
	}

	if encoded == "" {
		return nil, nil, fmt.Errorf("%w: %s", errNoChecksum, binaryName)
	}

	expected, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("decode checksum for %s: %w", binaryName, err)
	}

	logger.InfoKV(ctx, "Downloading binary", "name", binaryName)

	contents, err := u.fetch(ctx, binaryName)
	if err != nil {
		return nil, nil, err
	}

	actual, err := ChecksumBytes(contents)
	if err != nil {
		return nil, nil, err
	}

	if !bytes.Equal(actual, expected) {
		return nil, nil, fmt.Errorf("%w: %s", errChecksumMismatch, binaryName)
	}

	return contents, expected, nil
}

// applyBinary replaces the running executable with the downloaded one.
// go-update re-verifies the checksum before swapping files.
func (u *runner) applyBinary(ctx context.Context, contents, expected []byte) error {
	targetPath, err := os.Executable()
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: DefaultFileMode,
		Checksum:   expected,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return err
	}

	// go-update leaves the previous binary around; it is noise once the
	// swap succeeded.
	if err = os.Remove(targetPath + oldVersionSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove previous binary", "error", err)
	}

	return nil
}

// fetch downloads one file from the upgrade folder.
func (u *runner) fetch(ctx context.Context, name string) ([]byte, error) {
	fileURL, err := url.JoinPath(u.folder, name)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := u.client.Do(request)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s for %s", errBadHTTPStatus, response.Status, fileURL)
	}

	return io.ReadAll(response.Body)
}

// needsUpgrade reports whether remote is strictly newer than local.
func needsUpgrade(local, remote string) (bool, error) {
	localVersion, err := semver.NewVersion(local)
	if err != nil {
		return false, fmt.Errorf("local version %q: %w", local, err)
	}

	remoteVersion, err := semver.NewVersion(remote)
	if err != nil {
		return false, fmt.Errorf("remote version %q: %w", remote, err)
	}

	return remoteVersion.GreaterThan(localVersion), nil
}
