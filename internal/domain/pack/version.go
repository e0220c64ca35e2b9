package pack

import "strings"

// DefaultRelease is used when a version string carries no release segment.
const DefaultRelease = "1"

// SplitVersionRelease splits a version string of the form "X.Y.Z[release]"
// into its version and release parts. The bracketed segment, when present
// and non-empty after trimming, becomes the release; otherwise the release
// defaults to DefaultRelease.
//
// Malformed bracket pairs ("]" before "[", or a missing closing bracket)
// are not an error: the whole trimmed string is treated as the version.
func SplitVersionRelease(value string) (version, release string) {
	release = DefaultRelease

	open := strings.Index(value, "[")
	closing := strings.Index(value, "]")

	if open < 0 || closing < open {
		return strings.TrimSpace(value), release
	}

	if inner := strings.TrimSpace(value[open+1 : closing]); inner != "" {
		release = inner
	}

	return strings.TrimSpace(value[:open]), release
}
