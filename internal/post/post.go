// Package post turns authored documents into Posts and keeps them in
// publication order.
package post

import (
	"html/template"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/markdown"
)

// Delimiter separates the preamble, metadata and body of a document.
const Delimiter = "---"

// Post is one parsed blog entry. It is built once per document per pass and
// is not modified afterwards.
type Post struct {
	Title       string
	Description string
	Slug        string
	PublishDate time.Time
	Body        template.HTML
}

// Parser builds Posts from raw documents.
type Parser struct {
	renderer markdown.Renderer
}

// NewParser returns a Parser that renders bodies with r.
func NewParser(r markdown.Renderer) *Parser {
	return &Parser{renderer: r}
}

// Parse splits raw into at most three parts on Delimiter. Any text before the
// first delimiter is ignored, the second part is TOML metadata and the third
// is the Markdown body, taken verbatim. Delimiters inside the body are left
// alone.
func (p *Parser) Parse(raw string) (*Post, error) {
	parts := strings.SplitN(raw, Delimiter, 3)
	if len(parts) < 3 {
		return nil, siteerrors.NewMalformedDocument(len(parts))
	}

	var meta Metadata
	md, err := toml.Decode(parts[1], &meta)
	if err != nil {
		return nil, siteerrors.NewMetadataParse(siteerrors.CodeInvalidMetadata, err)
	}
	meta.hasTitle = md.IsDefined("title")
	if err := meta.Validate(); err != nil {
		return nil, siteerrors.NewMetadataParse(siteerrors.CodeInvalidMetadata, err)
	}
	date, err := meta.PublishDate()
	if err != nil {
		return nil, siteerrors.NewMetadataParse(siteerrors.CodeInvalidDate, err)
	}

	body, err := p.renderer.Render(parts[2])
	if err != nil {
		return nil, siteerrors.Wrap(err, siteerrors.ErrorTypeRender, siteerrors.CodeMarkdownRender, "markdown render failed").
			WithContext("slug", meta.ResolvedSlug())
	}

	return &Post{
		Title:       meta.Title,
		Description: meta.ResolvedDescription(),
		Slug:        meta.ResolvedSlug(),
		PublishDate: date,
		Body:        template.HTML(body),
	}, nil
}

// DateRendered formats the publish date as YYYY-MM-DD.
func (p *Post) DateRendered() string {
	return p.PublishDate.Format(DateLayout)
}
