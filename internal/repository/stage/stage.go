package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

const (
	// DirMode is the permission for created staging directories.
	DirMode os.FileMode = 0o755
	// FileMode is the permission for written template files.
	FileMode os.FileMode = 0o644
)

// Stager defines the filesystem operations the build pipeline depends on.
type Stager interface {
	// WriteText writes text to path, creating parent directories.
	WriteText(ctx context.Context, path, text string) error
	// CopyFile copies src to dst, creating parent directories and
	// preserving the source file mode. An existing dst is overwritten.
	CopyFile(ctx context.Context, src, dst string) error
	// CopyTree recursively copies the contents of srcDir under dstDir.
	CopyTree(ctx context.Context, srcDir, dstDir string) error
	// EnsureDir creates path and any missing parents.
	EnsureDir(ctx context.Context, path string) error
}

// DiskStager performs staging operations against the real filesystem.
type DiskStager struct{}

// NewDiskStager creates the disk-backed stager.
func NewDiskStager() *DiskStager {
	return &DiskStager{}
}

// WriteText writes text to path, creating parent directories.
func (s *DiskStager) WriteText(_ context.Context, path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return &pack.StageError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	if err := os.WriteFile(path, []byte(text), FileMode); err != nil {
		return &pack.StageError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// CopyFile copies src to dst, creating parent directories. A missing
// source is a fatal staging error, never a silent skip.
func (s *DiskStager) CopyFile(_ context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &pack.StageError{Op: "copy", Path: src, Err: err}
	}

	if err = os.MkdirAll(filepath.Dir(dst), DirMode); err != nil {
		return &pack.StageError{Op: "mkdir", Path: filepath.Dir(dst), Err: err}
	}

	if err = copyContents(src, dst, info.Mode().Perm()); err != nil {
		return &pack.StageError{Op: "copy", Path: dst, Err: err}
	}

	return nil
}

// CopyTree recursively copies the contents of srcDir under dstDir,
// preserving file modes. Symlinks are not followed.
func (s *DiskStager) CopyTree(ctx context.Context, srcDir, dstDir string) error {
	err := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relative, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dstDir, relative)

		if entry.IsDir() {
			return os.MkdirAll(target, DirMode)
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		return s.CopyFile(ctx, path, target)
	})
	if err != nil {
		var stageErr *pack.StageError
		if errors.As(err, &stageErr) {
			return err
		}

		return &pack.StageError{Op: "copy-tree", Path: srcDir, Err: err}
	}

	return nil
}

// EnsureDir creates path and any missing parents.
func (s *DiskStager) EnsureDir(_ context.Context, path string) error {
	if err := os.MkdirAll(path, DirMode); err != nil {
		return &pack.StageError{Op: "mkdir", Path: path, Err: err}
	}

	return nil
}

// copyContents streams src into dst with the provided mode.
func copyContents(src, dst string, mode os.FileMode) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = source.Close()
	}()

	destination, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(destination, source); err != nil {
		_ = destination.Close()
		return err
	}

	if err = destination.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return nil
}
