package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/testutils"
)

// resetConfig isolates a test from the global Viper state and flag vars.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	configFile = ""
	initMinimal, initForce = false, false
	versionShort, versionDetailed = false, false
	newSlug, newDescription, newDate, newForce = "", "", "", false
	t.Cleanup(viper.Reset)
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd
}

func scaffoldSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, runInit(testCommand(&out), []string{dir}))

	viper.Set("input.root", filepath.Join(dir, "input"))
	viper.Set("output.root", filepath.Join(dir, "public"))
	return dir
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "watch", "init", "new", "config", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	for _, flag := range []string{"config", "log-level", "log-format", "input", "output"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestInitCommand(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runInit(testCommand(&out), []string{dir}))

	assert.FileExists(t, filepath.Join(dir, ".quire.yml"))
	assert.FileExists(t, filepath.Join(dir, "input", "templates", "index.html"))
	assert.DirExists(t, filepath.Join(dir, "output", "blog"))
	assert.Contains(t, out.String(), "created .quire.yml")

	out.Reset()
	require.NoError(t, runInit(testCommand(&out), []string{dir}))
	assert.Contains(t, out.String(), "skipped .quire.yml (exists)")
}

func TestBuildCommand(t *testing.T) {
	resetConfig(t)
	dir := scaffoldSite(t)

	var out bytes.Buffer
	require.NoError(t, runBuild(testCommand(&out), nil))

	assert.Contains(t, out.String(), "Built 1 posts, 3 templates, 1 stylesheets")
	assert.FileExists(t, filepath.Join(dir, "public", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "public", "blog-list.html"))
	assert.FileExists(t, filepath.Join(dir, "public", "blog", "hello-world.html"))
}

func TestBuildCommandReportsPassFailure(t *testing.T) {
	resetConfig(t)
	dir := scaffoldSite(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "input", "blog", "hello-world.md")))

	var out bytes.Buffer
	err := runBuild(testCommand(&out), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, siteerrors.ErrEmptyPostList)
	assert.Empty(t, out.String())
}

func TestBuildCommandRejectsInvalidConfig(t *testing.T) {
	resetConfig(t)
	scaffoldSite(t)
	viper.Set("build.duplicates", "first-wins")

	err := runBuild(testCommand(&bytes.Buffer{}), nil)
	assert.ErrorIs(t, err, siteerrors.ErrConfig)
}

func TestNewCommandAddsPostToNextBuild(t *testing.T) {
	resetConfig(t)
	dir := scaffoldSite(t)

	var out bytes.Buffer
	newDate = "2030-01-02"
	require.NoError(t, runNew(testCommand(&out), []string{"Second Post"}))
	assert.Contains(t, out.String(), filepath.Join(dir, "input", "blog", "second-post.md"))

	out.Reset()
	require.NoError(t, runBuild(testCommand(&out), nil))
	assert.Contains(t, out.String(), "Built 2 posts")
	assert.FileExists(t, filepath.Join(dir, "public", "blog", "second-post.html"))

	newDate = "someday"
	assert.Error(t, runNew(testCommand(&out), []string{"Third"}))
}

func TestConfigShow(t *testing.T) {
	resetConfig(t)
	viper.Set("output.root", "./public")

	var out bytes.Buffer
	configShowFlags.Format = "json"
	t.Cleanup(func() { configShowFlags.Format = "yaml" })
	require.NoError(t, runConfigShow(testCommand(&out), nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "./public", decoded["output"].(map[string]any)["root"])
	assert.Equal(t, "3s", decoded["watch"].(map[string]any)["debounce"])

	out.Reset()
	configShowFlags.Format = "yaml"
	require.NoError(t, runConfigShow(testCommand(&out), nil))
	assert.Contains(t, out.String(), "root: ./public")

	configShowFlags.Format = "toml"
	assert.Error(t, runConfigShow(testCommand(&out), nil))
}

func TestConfigValidate(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yml")
	require.NoError(t, os.WriteFile(valid, []byte("build:\n  duplicates: last-wins\n"), 0o644))

	var out bytes.Buffer
	configFile = valid
	require.NoError(t, runConfigValidate(testCommand(&out), nil))
	assert.Contains(t, out.String(), "Configuration is valid")

	resetConfig(t)
	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  level: loud\n"), 0o644))
	configFile = invalid
	err := runConfigValidate(testCommand(&out), nil)
	assert.ErrorIs(t, err, siteerrors.ErrConfig)

	resetConfig(t)
	configFile = filepath.Join(dir, "missing.yml")
	assert.ErrorIs(t, runConfigValidate(testCommand(&out), nil), siteerrors.ErrConfig)
}

func TestVersionCommand(t *testing.T) {
	resetConfig(t)

	var out bytes.Buffer
	require.NoError(t, runVersion(testCommand(&out), nil))
	assert.True(t, strings.HasPrefix(out.String(), "quire "))

	out.Reset()
	versionFlags.Format = "json"
	t.Cleanup(func() { versionFlags.Format = "text" })
	require.NoError(t, runVersion(testCommand(&out), nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "version")
	assert.Contains(t, decoded, "go_version")

	versionFlags.Format = "xml"
	assert.Error(t, runVersion(testCommand(&out), nil))
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("yaml"))
	assert.NoError(t, ValidateFormat("json", "text", "json"))
	assert.Error(t, ValidateFormat("yaml", "text", "json"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommandRebuildsAndStops(t *testing.T) {
	resetConfig(t)
	dir := scaffoldSite(t)
	viper.Set("watch.debounce", "50ms")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- runWatch(cmd, nil) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Listening...")
	}, 5*time.Second, 10*time.Millisecond)

	testutils.WriteTree(t, filepath.Join(dir, "input"), map[string]string{
		"blog/second.md": testutils.PostDocument("Second", "second", `"2024-02-01"`),
	})
	testutils.WaitForFile(t, filepath.Join(dir, "public", "blog", "second.html"), 5*time.Second)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchCommandFailsOnInitialError(t *testing.T) {
	resetConfig(t)
	dir := scaffoldSite(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "input", "templates", "index.html")))
	viper.Set("watch.fail_on_initial_error", true)

	err := runWatch(testCommand(&bytes.Buffer{}), nil)
	assert.ErrorIs(t, err, siteerrors.ErrTemplateNotFound)
}
