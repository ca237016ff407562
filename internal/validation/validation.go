// Package validation holds input checks shared by the configuration layer,
// the output writer and the external stylesheet command.
package validation

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

var shellMeta = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}

// ValidateArgument rejects command-line arguments containing shell
// metacharacters. Commands are executed directly, never through a shell, so
// these only show up in a misconfigured or hostile config file.
func ValidateArgument(arg string) error {
	if arg == "" {
		return fmt.Errorf("argument cannot be empty")
	}
	for _, meta := range shellMeta {
		if strings.Contains(arg, meta) {
			return fmt.Errorf("argument %q contains %q", arg, meta)
		}
	}
	return nil
}

// ValidateRelPath checks that p is a relative path that stays inside the
// directory it is joined to.
func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("path %q must be relative", p)
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path %q contains a NUL byte", p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path %q escapes its root", p)
	}
	return nil
}

// ValidateLink accepts a site-absolute path ("/about.html") or an http(s) URL
// with a host.
func ValidateLink(link string) error {
	if link == "" {
		return fmt.Errorf("link cannot be empty")
	}
	if strings.ContainsAny(link, " \"'<>`\n\r") {
		return fmt.Errorf("link %q contains characters that are unsafe in markup", link)
	}

	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", link, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("link %q: scheme %q not allowed (only http and https)", link, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("link %q has no host", link)
	}
	return nil
}
