// Package upgrade implements self-update for the pack-forge binary.
//
// A release manifest (YAML) hosted in the configured upgrade folder names
// the published version and the per-platform binaries with their SHA-512
// checksums. When the remote version is newer than the running one, the
// matching binary is downloaded, checksum-verified and applied in place.
package upgrade
