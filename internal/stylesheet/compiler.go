// Package stylesheet compiles stylesheet sources into compressed CSS.
package stylesheet

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/validation"
)

// Compiler names.
const (
	CompilerMinify  = "minify"
	CompilerCommand = "command"
)

// Compiler turns one stylesheet source into compressed CSS. name is the
// logical name of the source and is used in errors only.
type Compiler interface {
	Compile(ctx context.Context, name, source string) (string, error)
}

// MinifyCompiler compresses plain CSS with tdewolff/minify.
type MinifyCompiler struct {
	m *minify.M
}

// NewMinifyCompiler returns a CSS-only minifier.
func NewMinifyCompiler() *MinifyCompiler {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return &MinifyCompiler{m: m}
}

// Compile satisfies Compiler.
func (c *MinifyCompiler) Compile(_ context.Context, name, source string) (string, error) {
	out, err := c.m.String("text/css", source)
	if err != nil {
		return "", siteerrors.NewStylesheetCompile(name, err)
	}
	return out, nil
}

// CommandCompiler pipes the source through an external program on stdin and
// takes stdout as the result, e.g. "sass --stdin --style=compressed".
type CommandCompiler struct {
	path string
	args []string
}

// NewCommandCompiler parses a whitespace-separated command line. The program
// must be on PATH and no argument may contain shell metacharacters.
func NewCommandCompiler(commandLine string) (*CommandCompiler, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("stylesheet command is empty")
	}
	for _, f := range fields {
		if err := validation.ValidateArgument(f); err != nil {
			return nil, fmt.Errorf("stylesheet command %q: %w", commandLine, err)
		}
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("stylesheet command %q: %w", fields[0], err)
	}

	return &CommandCompiler{path: path, args: fields[1:]}, nil
}

// Compile satisfies Compiler.
func (c *CommandCompiler) Compile(ctx context.Context, name, source string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", siteerrors.NewStylesheetCompile(name, err)
	}
	return stdout.String(), nil
}

// New builds the compiler selected by kind. command is used only by
// CompilerCommand.
func New(kind, command string) (Compiler, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", CompilerMinify:
		return NewMinifyCompiler(), nil
	case CompilerCommand:
		return NewCommandCompiler(command)
	default:
		return nil, fmt.Errorf("unknown stylesheet compiler %q", kind)
	}
}
