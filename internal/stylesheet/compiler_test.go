package stylesheet

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/conneroisu/quire/internal/errors"
)

func TestMinifyCompiler(t *testing.T) {
	c := NewMinifyCompiler()

	out, err := c.Compile(context.Background(), "main", "body {\n  color: #ff0000;\n  margin: 0px;\n}\n\n/* note */\n")
	require.NoError(t, err)
	assert.Equal(t, "body{color:red;margin:0}", out)
}

func TestMinifyCompilerEmpty(t *testing.T) {
	out, err := NewMinifyCompiler().Compile(context.Background(), "empty", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not in PATH", name)
	}
}

func TestCommandCompilerPipesStdin(t *testing.T) {
	requireTool(t, "cat")

	c, err := NewCommandCompiler("cat")
	require.NoError(t, err)

	out, err := c.Compile(context.Background(), "main", "a{b:c}")
	require.NoError(t, err)
	assert.Equal(t, "a{b:c}", out)
}

func TestCommandCompilerFailure(t *testing.T) {
	requireTool(t, "false")

	c, err := NewCommandCompiler("false")
	require.NoError(t, err)

	_, err = c.Compile(context.Background(), "broken", "a{")
	require.Error(t, err)
	assert.ErrorIs(t, err, siteerrors.ErrStylesheetCompile)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewCommandCompilerRejects(t *testing.T) {
	tests := map[string]string{
		"empty":          "   ",
		"metacharacters": "sass --stdin; rm -rf x",
		"missing binary": "quire-no-such-binary-xyz",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCommandCompiler(line)
			assert.Error(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New("", "")
	require.NoError(t, err)
	assert.IsType(t, &MinifyCompiler{}, c)

	c, err = New("MINIFY", "ignored")
	require.NoError(t, err)
	assert.IsType(t, &MinifyCompiler{}, c)

	_, err = New("scss", "")
	assert.Error(t, err)

	requireTool(t, "cat")
	c, err = New("command", "cat")
	require.NoError(t, err)
	assert.IsType(t, &CommandCompiler{}, c)
}
