//go:build property
// +build property

package post

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/markdown"
)

// TestParserProperties covers parsing over generated bodies and documents.
func TestParserProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	md := markdown.NewGoldmarkRenderer(markdown.Options{})
	parser := NewParser(md)

	properties.Property("body renders as its own markdown", prop.ForAll(
		func(body string) bool {
			doc := "---\ntitle = \"T\"\nslug = \"s\"\ndate = 2020-01-01\n---" + body
			post, err := parser.Parse(doc)
			if err != nil {
				return false
			}
			want, err := md.Render(body)
			return err == nil && string(post.Body) == want
		},
		gen.AlphaString(),
	))

	properties.Property("fewer than two delimiters is malformed", prop.ForAll(
		func(text string) bool {
			if strings.Count(text, Delimiter) >= 2 {
				return true
			}
			_, err := parser.Parse(text)
			return siteerrors.TypeOf(err) == siteerrors.ErrorTypeMalformedDocument
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
