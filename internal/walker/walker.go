// Package walker enumerates content units under a source directory.
//
// Walk returns a lazy, finite sequence of (Entry, error) pairs. The sequence
// stops at the first filesystem failure, which is yielded exactly once, and
// it stops immediately when the consumer breaks out of its range loop.
package walker

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	siteerrors "github.com/conneroisu/quire/internal/errors"
)

// Entry is one regular file discovered under the walk root.
type Entry struct {
	// Name is the logical name: the base filename without its extension.
	Name string
	// Path is the filesystem path of the file.
	Path string
	// Rel is the slash-separated path relative to the walk root.
	Rel string
	// Content is the full text of the file.
	Content string
}

// LogicalName strips the extension from a file's base name. Dotfiles such as
// ".DS_Store" produce an empty name and are skipped by Walk.
func LogicalName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Walk recursively enumerates the regular files under root.
func Walk(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield(Entry{}, siteerrors.WrapIO(err, siteerrors.CodeReadFailed, root))
			return
		}
		if !info.IsDir() {
			yield(Entry{}, &siteerrors.SiteError{
				Type:    siteerrors.ErrorTypeIO,
				Code:    siteerrors.CodeNotDirectory,
				Message: "walk root is not a directory",
				Path:    root,
			})
			return
		}

		walkDir(root, root, yield)
	}
}

// walkDir reports false once the walk must stop, either because of a failure
// or because the consumer stopped ranging.
func walkDir(root, dir string, yield func(Entry, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield(Entry{}, siteerrors.WrapIO(err, siteerrors.CodeReadFailed, dir))
		return false
	}

	for _, d := range entries {
		path := filepath.Join(dir, d.Name())

		mode := d.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				yield(Entry{}, siteerrors.WrapIO(err, siteerrors.CodeReadFailed, path))
				return false
			}
			mode = info.Mode().Type()
		}

		if mode.IsDir() {
			if !walkDir(root, path, yield) {
				return false
			}
			continue
		}
		if !mode.IsRegular() {
			continue
		}

		name := LogicalName(d.Name())
		if name == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			yield(Entry{}, siteerrors.WrapIO(err, siteerrors.CodeReadFailed, path))
			return false
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = d.Name()
		}

		if !yield(Entry{
			Name:    name,
			Path:    path,
			Rel:     filepath.ToSlash(rel),
			Content: string(data),
		}, nil) {
			return false
		}
	}

	return true
}
