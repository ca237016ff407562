package templates

import (
	"html/template"

	"github.com/conneroisu/quire/internal/post"
)

// IndexLimit bounds the number of summaries on the index page.
const IndexLimit = 5

// Summary is the listing form of a post.
type Summary struct {
	Title        string
	Description  string
	DateRendered string
	Href         string
}

// IndexView is the data passed to the "index" template.
type IndexView struct {
	Summaries []Summary
}

// ListView is the data passed to the "blog-list" template.
type ListView struct {
	Summaries []Summary
}

// PostView is the data passed to the "blog" template.
type PostView struct {
	Title        string
	Description  string
	Body         template.HTML
	DateRendered string
}

// Href returns the site path of a post's page.
func Href(p *post.Post) string {
	return "/blog/" + p.Slug + ".html"
}

// OutputPath returns the path of a post's page relative to the output root.
func OutputPath(p *post.Post) string {
	return "blog/" + p.Slug + ".html"
}

func summarize(posts []*post.Post) []Summary {
	summaries := make([]Summary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, Summary{
			Title:        p.Title,
			Description:  p.Description,
			DateRendered: p.DateRendered(),
			Href:         Href(p),
		})
	}
	return summaries
}

func newPostView(p *post.Post) PostView {
	return PostView{
		Title:        p.Title,
		Description:  p.Description,
		Body:         p.Body,
		DateRendered: p.DateRendered(),
	}
}
