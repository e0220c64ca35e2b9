// Package version exposes build metadata for pack-forge.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. Short feeds
// the upgrade command's version comparison; Full renders the version string
// for CLI output and logs.
package version
