// Package markdown renders post bodies from Markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown source into HTML.
type Renderer interface {
	Render(source string) (string, error)
}

// Options controls the goldmark engine.
type Options struct {
	// Extensions names goldmark extensions to enable ("gfm", "table",
	// "strikethrough", "linkify", "tasklist", "definition", "footnote").
	// Unknown names are ignored.
	Extensions []string
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// Unsafe lets raw HTML in the source through to the output.
	Unsafe bool
	// AutoHeadingID assigns id attributes to headings.
	AutoHeadingID bool
}

// GoldmarkRenderer implements Renderer with goldmark. The engine is built once
// and is safe for reuse across passes.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

// NewGoldmarkRenderer builds a renderer for the given options.
func NewGoldmarkRenderer(opts Options) *GoldmarkRenderer {
	return &GoldmarkRenderer{engine: newEngine(opts)}
}

// Render satisfies Renderer.
func (r *GoldmarkRenderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

func newEngine(opts Options) goldmark.Markdown {
	var parserOptions []parser.Option
	if opts.AutoHeadingID {
		parserOptions = append(parserOptions, parser.WithAutoHeadingID())
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{}
	if len(parserOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithParserOptions(parserOptions...))
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extenders = append(extenders, ext)
	}

	return extenders
}
