// Package templates holds the named page templates of one build pass and
// renders the index, list and post pages from them.
//
// Rendering is strict: a reference to a field the view model does not have
// fails the render instead of producing an empty string.
package templates

import (
	"bytes"
	"html/template"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/post"
)

// Template names the Store renders.
const (
	IndexTemplate = "index"
	ListTemplate  = "blog-list"
	PostTemplate  = "blog"
)

// Option configures a Store.
type Option func(*Store)

// WithLinks adds link templates, replacing built-ins of the same name.
func WithLinks(links map[string]string) Option {
	return func(s *Store) {
		maps.Copy(s.sources, links)
	}
}

// WithFuncs adds template functions. They must be supplied before any
// template is ingested.
func WithFuncs(funcs template.FuncMap) Option {
	return func(s *Store) {
		maps.Copy(s.funcs, funcs)
	}
}

// Store is a set of named templates. Ingesting a name that already exists
// replaces it. A Store is built for one pass and is not safe for concurrent
// use.
type Store struct {
	sources map[string]string
	funcs   template.FuncMap

	// set is the compiled template set, rebuilt lazily after Ingest since
	// html/template refuses to parse into a set that has been executed.
	set *template.Template
}

// New returns a Store seeded with the built-in link templates.
func New(opts ...Option) *Store {
	s := &Store{
		sources: DefaultLinks(),
		funcs: template.FuncMap{
			"title": func(s string) string { return cases.Title(language.English).String(s) },
			"upper": strings.ToUpper,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest registers source under name. The source is parsed immediately and a
// syntax error leaves the Store unchanged.
func (s *Store) Ingest(name, source string) error {
	if _, err := template.New(name).Funcs(s.funcs).Parse(source); err != nil {
		return siteerrors.NewTemplateSyntax(name, err)
	}
	s.sources[name] = source
	s.set = nil
	return nil
}

// Has reports whether a template called name has been registered.
func (s *Store) Has(name string) bool {
	_, ok := s.sources[name]
	return ok
}

// Names returns the registered template names, sorted.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.sources))
}

// RenderIndex renders the "index" template with the first IndexLimit posts.
// posts must be newest first and non-empty.
func (s *Store) RenderIndex(posts []*post.Post) (string, error) {
	if len(posts) == 0 {
		return "", siteerrors.NewEmptyPostList()
	}
	n := min(IndexLimit, len(posts))
	return s.execute(IndexTemplate, IndexView{Summaries: summarize(posts[:n])})
}

// RenderList renders the "blog-list" template with every post. An empty list
// is valid.
func (s *Store) RenderList(posts []*post.Post) (string, error) {
	return s.execute(ListTemplate, ListView{Summaries: summarize(posts)})
}

// RenderPost renders the "blog" template for one post.
func (s *Store) RenderPost(p *post.Post) (string, error) {
	return s.execute(PostTemplate, newPostView(p))
}

func (s *Store) compile() (*template.Template, error) {
	if s.set != nil {
		return s.set, nil
	}

	root := template.New("").Funcs(s.funcs).Option("missingkey=error")
	for _, name := range s.Names() {
		if _, err := root.New(name).Parse(s.sources[name]); err != nil {
			return nil, siteerrors.NewTemplateSyntax(name, err)
		}
	}
	s.set = root
	return root, nil
}

func (s *Store) execute(name string, data any) (string, error) {
	set, err := s.compile()
	if err != nil {
		return "", err
	}
	if set.Lookup(name) == nil {
		return "", siteerrors.NewTemplateNotFound(name)
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", classifyExecError(name, err)
	}
	return buf.String(), nil
}

// classifyExecError maps html/template failures onto the error taxonomy. The
// template packages only expose these conditions through their messages.
func classifyExecError(name string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "can't evaluate field"),
		strings.Contains(msg, "map has no entry for key"),
		strings.Contains(msg, "nil pointer evaluating"):
		return siteerrors.NewUndefinedVariable(name, err)
	case strings.Contains(msg, "no such template"),
		strings.Contains(msg, "not defined"):
		return siteerrors.Wrap(err, siteerrors.ErrorTypeTemplateNotFound, siteerrors.CodeTemplateMissing,
			"template references an unregistered template").WithContext("template", name)
	default:
		return siteerrors.WrapRender(err, name)
	}
}
