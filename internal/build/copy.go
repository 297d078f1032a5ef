package build

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/registry"
)

// copyAncillary copies every entry of srcDir except the reserved source files
// into destDir, overwriting existing files. Directories are copied
// recursively. It returns the names of the top-level entries copied.
func copyAncillary(srcDir, destDir string) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, errors.NewFileSystemError("ANCILLARY_SCAN", "cannot list template directory", err).WithPath(srcDir)
	}

	var copied []string
	for _, entry := range entries {
		if registry.IsReserved(entry.Name()) {
			continue
		}

		src := filepath.Join(srcDir, entry.Name())
		dest := filepath.Join(destDir, entry.Name())
		if err := copyEntry(src, dest); err != nil {
			return copied, err
		}
		copied = append(copied, entry.Name())
	}
	return copied, nil
}

func copyEntry(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.NewFileSystemError("ANCILLARY_STAT", "cannot stat ancillary file", err).WithPath(src)
	}

	if !info.IsDir() {
		return copyFile(src, dest, info.Mode().Perm())
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.NewFileSystemError("ANCILLARY_DIR", "cannot create directory", err).WithPath(dest)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.NewFileSystemError("ANCILLARY_SCAN", "cannot list directory", err).WithPath(src)
	}
	for _, entry := range entries {
		if err := copyEntry(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewFileSystemError("ANCILLARY_READ", "cannot open ancillary file", err).WithPath(src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return errors.NewFileSystemError("ANCILLARY_WRITE", "cannot create ancillary copy", err).WithPath(dest)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewFileSystemError("ANCILLARY_WRITE", "cannot copy ancillary file", err).WithPath(dest)
	}
	if err := out.Close(); err != nil {
		return errors.NewFileSystemError("ANCILLARY_WRITE", "cannot finish ancillary copy", err).WithPath(dest)
	}
	return nil
}
