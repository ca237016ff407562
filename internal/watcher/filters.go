package watcher

import (
	"path/filepath"
	"strings"
)

// NoHiddenUnder ignores dotfiles and anything inside a dot-directory, such
// as .git, below root. Ancestors of root are not considered, so a root that
// itself lives under a dot-directory still reports changes.
func NoHiddenUnder(root string) Filter {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return func(path string) bool {
		p, err := filepath.Abs(path)
		if err != nil {
			p = filepath.Clean(path)
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return !isHidden(filepath.Base(p))
		}
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if isHidden(part) {
				return false
			}
		}
		return true
	}
}

// NoEditorTempFilter ignores swap and backup files written by editors.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == "4913":
		return false
	}
	return true
}

// NotUnder ignores paths inside dir, typically the output root when it
// lives inside the watched tree.
func NotUnder(dir string) Filter {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	return func(path string) bool {
		p, err := filepath.Abs(path)
		if err != nil {
			return true
		}
		return p != abs && !strings.HasPrefix(p, abs+string(filepath.Separator))
	}
}
