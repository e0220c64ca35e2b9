// Package config defines the YAML project file describing the application
// to package and provides helpers to load, validate and save it.
//
// The Config type carries the application identity, the version-release
// string, template locations, icon candidates and output settings consumed
// by the builder service.
package config
