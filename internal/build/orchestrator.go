// Package build runs one full rebuild of the site.
//
// Each pass builds a fresh template store and post registry, so nothing
// survives from one pass to the next except files already written to the
// output root. Stale output is never removed.
package build

import (
	"context"
	"errors"
	"iter"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/logging"
	"github.com/conneroisu/quire/internal/markdown"
	"github.com/conneroisu/quire/internal/output"
	"github.com/conneroisu/quire/internal/post"
	"github.com/conneroisu/quire/internal/stylesheet"
	"github.com/conneroisu/quire/internal/templates"
	"github.com/conneroisu/quire/internal/walker"
)

// Fixed output paths.
const (
	IndexFile = "index.html"
	ListFile  = "blog-list.html"
	PostDir   = "blog"
)

// Sources locates the input trees.
type Sources struct {
	Templates string
	Posts     string
	Styles    string
	// Static is copied verbatim to StaticOutput when set.
	Static       string
	StaticOutput string
}

// Options configures an Orchestrator.
type Options struct {
	Sources    Sources
	Duplicates walker.DuplicatePolicy
	Links      map[string]string
}

// Result describes a finished pass. Run returns it on failure too, with the
// files written before the failing step.
type Result struct {
	PassID      string
	Templates   int
	Posts       int
	Stylesheets int
	Static      int
	Files       []string
	Bytes       int64
	Duration    time.Duration
}

// HumanBytes renders Bytes for logs.
func (r *Result) HumanBytes() string {
	return humanize.Bytes(uint64(r.Bytes))
}

// Orchestrator turns the input trees into output files.
type Orchestrator struct {
	opts     Options
	parser   *post.Parser
	compiler stylesheet.Compiler
	writer   *output.Writer
	logger   logging.Logger
}

// NewOrchestrator wires the collaborators of a pass.
func NewOrchestrator(opts Options, md markdown.Renderer, compiler stylesheet.Compiler, w *output.Writer, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		opts:     opts,
		parser:   post.NewParser(md),
		compiler: compiler,
		writer:   w,
		logger:   logger.WithComponent("build"),
	}
}

type pass struct {
	*Orchestrator
	ctx    context.Context
	logger logging.Logger
	result *Result
}

// Run executes one pass. The first failing step aborts the pass and later
// steps do not run.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	p := &pass{
		Orchestrator: o,
		ctx:          ctx,
		logger:       o.logger.With("pass_id", id, "output", o.writer.Root()),
		result:       &Result{PassID: id},
	}

	err := p.run()
	p.result.Duration = time.Since(start)
	return p.result, err
}

func (p *pass) run() error {
	store, err := p.loadTemplates()
	if err != nil {
		return err
	}

	registry, err := p.loadPosts()
	if err != nil {
		return err
	}

	if err := p.compileStylesheets(); err != nil {
		return err
	}

	posts := registry.Snapshot()

	index, err := store.RenderIndex(posts)
	if err != nil {
		return err
	}
	if err := p.write(IndexFile, index); err != nil {
		return err
	}

	list, err := store.RenderList(posts)
	if err != nil {
		return err
	}
	if err := p.write(ListFile, list); err != nil {
		return err
	}

	for _, entry := range posts {
		page, err := store.RenderPost(entry)
		if err != nil {
			return annotate(err, entry.Slug)
		}
		if err := p.write(templates.OutputPath(entry), page); err != nil {
			return err
		}
	}

	return p.copyStatic()
}

func (p *pass) walk(root string) iter.Seq2[walker.Entry, error] {
	return walker.Unique(walker.Walk(root), p.opts.Duplicates)
}

func (p *pass) loadTemplates() (*templates.Store, error) {
	store := templates.New(templates.WithLinks(p.opts.Links))
	for entry, err := range p.walk(p.opts.Sources.Templates) {
		if err != nil {
			return nil, err
		}
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		if err := store.Ingest(entry.Name, entry.Content); err != nil {
			return nil, annotate(err, entry.Path)
		}
		p.result.Templates++
	}
	for _, name := range []string{templates.IndexTemplate, templates.ListTemplate, templates.PostTemplate} {
		if !store.Has(name) {
			p.logger.Warn(p.ctx, siteerrors.NewTemplateNotFound(name), "required template missing",
				"templates", p.opts.Sources.Templates)
		}
	}
	p.logger.Debug(p.ctx, "templates loaded", "count", p.result.Templates)
	return store, nil
}

func (p *pass) loadPosts() (*post.Registry, error) {
	registry := post.NewRegistry()
	slugs := make(map[string]string)

	for entry, err := range p.walk(p.opts.Sources.Posts) {
		if err != nil {
			return nil, err
		}
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := p.parser.Parse(entry.Content)
		if err != nil {
			return nil, annotate(err, entry.Path)
		}
		if first, ok := slugs[parsed.Slug]; ok && p.opts.Duplicates != walker.DuplicateLastWins {
			return nil, siteerrors.NewDuplicateName(parsed.Slug, first, entry.Path)
		}
		slugs[parsed.Slug] = entry.Path
		registry.Insert(parsed)
	}

	p.result.Posts = registry.Len()
	p.logger.Debug(p.ctx, "posts loaded", "count", p.result.Posts)
	return registry, nil
}

func (p *pass) compileStylesheets() error {
	for entry, err := range p.walk(p.opts.Sources.Styles) {
		if err != nil {
			return err
		}
		if err := p.ctx.Err(); err != nil {
			return err
		}
		css, err := p.compiler.Compile(p.ctx, entry.Name, entry.Content)
		if err != nil {
			return annotate(err, entry.Path)
		}
		if err := p.write(entry.Name+".css", css); err != nil {
			return err
		}
		p.result.Stylesheets++
	}
	return nil
}

func (p *pass) copyStatic() error {
	if p.opts.Sources.Static == "" {
		return nil
	}
	// Static files keep their relative paths, so same-named files in
	// different directories never collide.
	for entry, err := range walker.Walk(p.opts.Sources.Static) {
		if err != nil {
			return err
		}
		rel := path.Join(p.opts.Sources.StaticOutput, entry.Rel)
		n, err := p.writer.Copy(entry.Path, rel)
		if err != nil {
			return err
		}
		p.result.Static++
		p.result.Files = append(p.result.Files, rel)
		p.result.Bytes += n
	}
	return nil
}

func (p *pass) write(rel, content string) error {
	n, err := p.writer.Write(rel, content)
	if err != nil {
		return err
	}
	p.result.Files = append(p.result.Files, rel)
	p.result.Bytes += int64(n)
	return nil
}

// annotate records the source path on a SiteError that has none.
func annotate(err error, source string) error {
	var se *siteerrors.SiteError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = source
	}
	return err
}
