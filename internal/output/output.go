// Package output writes generated files beneath a single output root.
package output

import (
	"io"
	"os"
	"path/filepath"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/validation"
)

// Init prepares the output root and the given subdirectories. It runs once
// at startup; passes assume the directories exist. A path that exists but
// is not a directory is an error.
func Init(root string, subdirs ...string) error {
	dirs := []string{root}
	for _, sub := range subdirs {
		if err := validation.ValidateRelPath(sub); err != nil {
			return siteerrors.Wrap(err, siteerrors.ErrorTypeIO, siteerrors.CodeAbsolutePath, "invalid output subdirectory").
				WithPath(sub)
		}
		dirs = append(dirs, filepath.Join(root, filepath.FromSlash(sub)))
	}

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		switch {
		case err == nil && !info.IsDir():
			return &siteerrors.SiteError{
				Type:    siteerrors.ErrorTypeIO,
				Code:    siteerrors.CodeNotDirectory,
				Message: "output path exists and is not a directory",
				Path:    dir,
			}
		case err != nil && !os.IsNotExist(err):
			return siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, dir)
		}
	}
	return nil
}

// Writer writes files relative to an output root.
type Writer struct {
	root string
}

// NewWriter returns a Writer rooted at root. The root is not created.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Root returns the output root.
func (w *Writer) Root() string {
	return w.root
}

// Path resolves rel against the root, refusing absolute or escaping paths.
func (w *Writer) Path(rel string) (string, error) {
	if err := validation.ValidateRelPath(rel); err != nil {
		return "", siteerrors.Wrap(err, siteerrors.ErrorTypeIO, siteerrors.CodeAbsolutePath, "output path must be relative").
			WithPath(rel)
	}
	return filepath.Join(w.root, filepath.FromSlash(rel)), nil
}

// Write replaces the file at rel with content and returns the number of bytes
// written. The parent directory must already exist.
func (w *Writer) Write(rel, content string) (int, error) {
	path, err := w.Path(rel)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, path)
	}
	return len(content), nil
}

// Copy copies the file at src to rel, creating parent directories as needed.
func (w *Writer) Copy(src, rel string) (int64, error) {
	dst, err := w.Path(rel)
	if err != nil {
		return 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, siteerrors.WrapIO(err, siteerrors.CodeReadFailed, src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, filepath.Dir(dst))
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, dst)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, dst)
	}
	return n, nil
}
