// Package services wires configuration, the build orchestrator and the file
// watcher into the operations the CLI exposes.
package services

import (
	"context"

	"github.com/conneroisu/quire/internal/build"
	"github.com/conneroisu/quire/internal/config"
	"github.com/conneroisu/quire/internal/logging"
	"github.com/conneroisu/quire/internal/markdown"
	"github.com/conneroisu/quire/internal/output"
	"github.com/conneroisu/quire/internal/stylesheet"
	"github.com/conneroisu/quire/internal/walker"
)

// Runner executes one rebuild pass.
type Runner interface {
	Run(ctx context.Context) (*build.Result, error)
}

// BuildService builds the site described by a Config.
type BuildService struct {
	config       *config.Config
	orchestrator *build.Orchestrator
	logger       logging.Logger
}

// NewBuildService constructs the pass collaborators from cfg. It fails on
// settings that cannot be turned into a working pipeline, such as a
// stylesheet command that is not installed.
func NewBuildService(cfg *config.Config, logger logging.Logger) (*BuildService, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	policy, err := walker.ParseDuplicatePolicy(cfg.Build.Duplicates)
	if err != nil {
		return nil, err
	}

	compiler, err := stylesheet.New(cfg.Stylesheet.Compiler, cfg.Stylesheet.Command)
	if err != nil {
		return nil, err
	}

	md := markdown.NewGoldmarkRenderer(markdown.Options{
		Extensions:    cfg.Markdown.Extensions,
		HardWraps:     cfg.Markdown.HardWraps,
		Unsafe:        cfg.Markdown.Unsafe,
		AutoHeadingID: cfg.Markdown.HeadingIDs,
	})

	opts := build.Options{
		Sources: build.Sources{
			Templates:    cfg.TemplatesDir(),
			Posts:        cfg.PostsDir(),
			Styles:       cfg.StylesDir(),
			Static:       cfg.StaticDir(),
			StaticOutput: cfg.Input.Static,
		},
		Duplicates: policy,
		Links:      cfg.Links,
	}

	return &BuildService{
		config:       cfg,
		orchestrator: build.NewOrchestrator(opts, md, compiler, output.NewWriter(cfg.Output.Root), logger),
		logger:       logger.WithComponent("build_service"),
	}, nil
}

// Prepare creates the output root and the post directory. Call it once
// before the first pass.
func (s *BuildService) Prepare() error {
	return output.Init(s.config.Output.Root, build.PostDir)
}

// Run executes one pass and logs its outcome.
func (s *BuildService) Run(ctx context.Context) (*build.Result, error) {
	perf := logging.StartOperation(s.logger, "rebuild")

	result, err := s.orchestrator.Run(ctx)
	fields := []interface{}{
		"pass_id", result.PassID,
		"templates", result.Templates,
		"posts", result.Posts,
		"stylesheets", result.Stylesheets,
		"files", len(result.Files),
		"bytes", result.HumanBytes(),
	}
	if err != nil {
		perf.EndWithError(ctx, err, fields...)
		return result, err
	}
	perf.End(ctx, fields...)
	return result, nil
}
