package stage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// TestWriteTextCreatesParents checks that nested destinations are created.
func TestWriteTextCreatesParents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stager := NewDiskStager()
	path := filepath.Join(t.TempDir(), "usr", "share", "applications", "app.desktop")

	require.NoError(t, stager.WriteText(ctx, path, "[Desktop Entry]\n"))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[Desktop Entry]\n", string(contents))
}

// TestCopyFile checks content copy, overwrite and the missing-source error.
func TestCopyFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stager := NewDiskStager()
	dir := t.TempDir()

	src := filepath.Join(dir, "icon.svg")
	require.NoError(t, os.WriteFile(src, []byte("<svg/>"), 0o644))

	dst := filepath.Join(dir, "staged", "icons", "app.svg")
	require.NoError(t, stager.CopyFile(ctx, src, dst))

	contents, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "<svg/>", string(contents))

	// Last copy wins on an existing destination.
	require.NoError(t, os.WriteFile(src, []byte("<svg>2</svg>"), 0o644))
	require.NoError(t, stager.CopyFile(ctx, src, dst))

	contents, err = os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "<svg>2</svg>", string(contents))

	// Missing source is a StageError, not a silent skip.
	err = stager.CopyFile(ctx, filepath.Join(dir, "missing.svg"), dst)
	require.Error(t, err)

	var stageErr *pack.StageError

	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, "copy", stageErr.Op)
}

// TestCopyTree checks recursive copy of a publish tree.
func TestCopyTree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stager := NewDiskStager()
	dir := t.TempDir()

	srcDir := filepath.Join(dir, "publish")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "demo"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "lib", "data.bin"), []byte{1, 2, 3}, 0o644))

	dstDir := filepath.Join(dir, "staged", "usr", "bin")
	require.NoError(t, stager.CopyTree(ctx, srcDir, dstDir))

	info, err := os.Stat(filepath.Join(dstDir, "demo"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	contents, err := os.ReadFile(filepath.Join(dstDir, "lib", "data.bin"))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, contents)
}

// TestEnsureDir checks directory creation.
func TestEnsureDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stager := NewDiskStager()
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, stager.EnsureDir(ctx, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
