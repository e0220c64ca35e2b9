// Package pack contains the core domain model for building installer
// artifacts: the package Kind enum, the permissive version[release] split,
// the BuildContext with its staging layout, the icon resolver, and the
// macro table used to expand manifest and desktop templates.
//
// Everything here is pure computation over strings and paths; filesystem
// writes and command execution live in the repository and service layers.
package pack
