// Package builder implements the package-build orchestration pipeline.
//
// A KindBuilder supplies the format-specific pieces (executable location,
// manifest content, ordered build commands); the Pipeline owns the generic
// sequence shared by every kind: expand and write templates, copy icons,
// then drive the external packaging tool. Run is the CLI entry point that
// wires configuration, layout, icon resolution and the run guard together.
package builder
