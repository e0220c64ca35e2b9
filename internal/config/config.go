package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config describes one application to package. It is loaded from a YAML
// project file and stays read-only for the duration of a build.
type Config struct {
	// AppID is the application identifier in reverse-domain notation,
	// e.g. "com.example.demo".
	AppID string `yaml:"app_id"`
	// AppBaseName is the short name used for binaries and artifact files.
	AppBaseName string `yaml:"app_base_name"`
	// AppFriendlyName is the human-readable application name.
	AppFriendlyName string `yaml:"app_friendly_name"`
	// AppSummary is a one-line description.
	AppSummary string `yaml:"app_summary"`
	// AppLicense is the SPDX license identifier.
	AppLicense string `yaml:"app_license"`
	// AppVendor is the publisher name.
	AppVendor string `yaml:"app_vendor"`
	// AppURL is the project home page.
	AppURL string `yaml:"app_url"`
	// AppVersionRelease is the "X.Y.Z[release]" version string.
	AppVersionRelease string `yaml:"app_version_release"`
	// PublishDir is the application tree produced by the upstream publish
	// step; its contents are copied under the staged bin directory.
	PublishDir string `yaml:"publish_dir"`
	// DesktopFile is an optional path to a desktop-entry template.
	DesktopFile string `yaml:"desktop_file"`
	// MetaFile is an optional path to an AppStream metainfo template.
	MetaFile string `yaml:"meta_file"`
	// Icons lists candidate icon source paths in priority order. When
	// empty, a built-in default set is used.
	Icons []string `yaml:"icons"`
	// OutputDirectory is where final artifacts land. Defaults to "Deploy".
	OutputDirectory string `yaml:"output_dir"`
	// AppendVersion includes the version-release segment in synthesized
	// artifact names.
	AppendVersion bool `yaml:"output_version_name"`
	// Arch is the target architecture. Defaults to the host architecture
	// in packaging notation (x86_64, aarch64, ...).
	Arch string `yaml:"arch"`
	// UpgradeFolder is the URL hosting pack-forge release manifests for
	// the upgrade command. Optional.
	UpgradeFolder string `yaml:"upgrade_folder"`
}

const (
	// DefaultConfigFilename is the default project file name.
	DefaultConfigFilename = "pack-forge.yaml"

	// DefaultOutputDirectory is where artifacts land when unconfigured.
	DefaultOutputDirectory = "Deploy"

	// DefaultFilePermissions is the file permission for written configs.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppIDRequired is returned when the application id is missing.
	errAppIDRequired = errors.New("app_id must be provided")
	// errBaseNameRequired is returned when the base name is missing.
	errBaseNameRequired = errors.New("app_base_name must be provided")
	// errVersionRequired is returned when the version string is missing.
	errVersionRequired = errors.New("app_version_release must be provided")
	// errProjectFileExists is returned when SaveNew would overwrite a file.
	errProjectFileExists = errors.New("project file already exists")
)

// Load reads a project file from the provided path and validates essential
// fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal project file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal project file: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}

	return nil
}

// SaveNew writes the configuration like Save but refuses to overwrite an
// existing file.
func SaveNew(path string, cfg *Config) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", errProjectFileExists, path)
	}

	return Save(path, cfg)
}

// Validate checks required fields and applies defaults in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.AppID == "" {
		return errAppIDRequired
	}

	if cfg.AppBaseName == "" {
		return errBaseNameRequired
	}

	if cfg.AppVersionRelease == "" {
		return errVersionRequired
	}

	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = DefaultOutputDirectory
	}

	if cfg.Arch == "" {
		cfg.Arch = HostArch()
	}

	if cfg.UpgradeFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpgradeFolder); err != nil {
		return fmt.Errorf("invalid upgrade folder URI: %w", err)
	}

	return nil
}

// DesktopText returns the desktop-entry template content, or empty when no
// desktop file is configured.
func (c *Config) DesktopText() (string, error) {
	return readOptional(c.DesktopFile)
}

// MetaInfoText returns the metainfo template content, or empty when no
// metainfo file is configured.
func (c *Config) MetaInfoText() (string, error) {
	return readOptional(c.MetaFile)
}

// readOptional reads a template file, treating an empty path as no content.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}

	return string(contents), nil
}

// HostArch maps the Go architecture name to packaging notation.
func HostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return runtime.GOARCH
	}
}
