// Package testutils holds fixtures shared by the package tests: input trees
// written from maps, post documents and polling helpers for the watcher.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteTree writes files, keyed by slash-separated paths relative to root,
// creating parent directories as needed.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// CreateSiteTree returns a fresh input root holding the templates, blog and
// css directories plus files.
func CreateSiteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"templates", "blog", "css"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	WriteTree(t, root, files)
	return root
}

// PostDocument renders a post with front matter. date is written verbatim,
// so 2020-01-02 becomes a TOML date and "2020-01-02" a string.
func PostDocument(title, slug, date string) string {
	return fmt.Sprintf("---\ntitle = %q\ndescr = \"about %s\"\nurl_friendly_name = %q\ndate = %s\n---\n# %s\n",
		title, title, slug, date, title)
}

// WaitForFile polls until path exists.
func WaitForFile(t testing.TB, path string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("file %s did not appear within %v", path, timeout)
}

// WaitForFileChange polls until path is modified after since.
func WaitForFileChange(t testing.TB, path string, since time.Time, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err == nil && info.ModTime().After(since) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("file %s was not modified within %v", path, timeout)
}
