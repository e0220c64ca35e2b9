// Package common holds helpers shared by the builder and upgrade services:
// external shell command execution and the marker-file guard that keeps two
// runs with the same key from working in one pack root at the same time.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
