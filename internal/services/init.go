package services

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/quire/internal/config"
	siteerrors "github.com/conneroisu/quire/internal/errors"
)

// ConfigFileName is the configuration file written by InitProject and read
// by the CLI.
const ConfigFileName = ".quire.yml"

// InitService scaffolds a new site.
type InitService struct{}

// NewInitService creates a new initialization service.
func NewInitService() *InitService {
	return &InitService{}
}

// InitOptions contains options for site initialization.
type InitOptions struct {
	ProjectDir string
	// Minimal creates the directories and config file without sample
	// content.
	Minimal bool
	// Force overwrites existing files.
	Force bool
}

// InitResult lists what InitProject created.
type InitResult struct {
	Created []string
	Skipped []string
}

var sampleFiles = map[string]string{
	"input/templates/index.html": `<!doctype html>
<title>Home</title>
<nav><a href="{{template "link-blog"}}">All posts</a> <a href="{{template "link-about"}}">About</a></nav>
<ul>
{{range .Summaries}}  <li><a href="{{.Href}}">{{.Title}}</a> <time>{{.DateRendered}}</time><p>{{.Description}}</p></li>
{{end}}</ul>
`,
	"input/templates/blog-list.html": `<!doctype html>
<title>Blog</title>
<ul>
{{range .Summaries}}  <li>{{.DateRendered}} <a href="{{.Href}}">{{.Title}}</a></li>
{{end}}</ul>
`,
	"input/templates/blog.html": `<!doctype html>
<title>{{.Title}}</title>
<link rel="stylesheet" href="/main.css">
<article>
<h1>{{.Title}}</h1>
<time>{{.DateRendered}}</time>
{{.Body}}
</article>
`,
	"input/blog/hello-world.md": `---
title = "Hello, world"
descr = "The first post."
url_friendly_name = "hello-world"
date = 2020-01-01
---
Welcome to the blog.
`,
	"input/css/main.css": `body {
  max-width: 40rem;
  margin: 0 auto;
  font-family: sans-serif;
}
`,
}

// InitProject creates the input layout and a config file under
// opts.ProjectDir. Existing files are kept unless Force is set.
func (s *InitService) InitProject(opts InitOptions) (*InitResult, error) {
	dir := opts.ProjectDir
	if dir == "" {
		dir = "."
	}

	for _, sub := range []string{"input/templates", "input/blog", "input/css", "output/blog"} {
		path := filepath.Join(dir, filepath.FromSlash(sub))
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, path)
		}
	}

	files := map[string]string{}
	if !opts.Minimal {
		for rel, content := range sampleFiles {
			files[rel] = content
		}
	}

	cfgData, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return nil, siteerrors.NewConfigError("could not encode default configuration", err)
	}
	files[ConfigFileName] = string(cfgData)

	result := &InitResult{}
	for _, rel := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil && !opts.Force {
			result.Skipped = append(result.Skipped, rel)
			continue
		}
		if err := os.WriteFile(path, []byte(files[rel]), 0o644); err != nil {
			return nil, siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, path)
		}
		result.Created = append(result.Created, rel)
	}
	return result, nil
}

func defaultConfig() config.Config {
	return config.Config{
		Input:      config.InputConfig{Root: "./input", Templates: "templates", Posts: "blog", Styles: "css"},
		Output:     config.OutputConfig{Root: "./output"},
		Build:      config.BuildConfig{Duplicates: "error"},
		Markdown:   config.MarkdownConfig{Extensions: []string{}},
		Stylesheet: config.StylesheetConfig{Compiler: "minify"},
		Links:      map[string]string{},
		Watch:      config.WatchConfig{Debounce: config.DefaultDebounce},
		Log:        config.LogConfig{Level: "info", Format: "text"},
	}
}
