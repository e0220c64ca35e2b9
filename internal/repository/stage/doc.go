// Package stage implements the filesystem collaborator used by the build
// pipeline: writing expanded template text, copying icons and publish
// output into the staging tree, creating parent directories on demand.
//
// The Stager interface lets the pipeline be exercised in tests; DiskStager
// is the real implementation.
package stage
