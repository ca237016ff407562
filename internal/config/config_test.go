package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/conneroisu/quire/internal/errors"
)

func loadYAML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(doc)))
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.Input.Root)
	assert.Equal(t, "templates", cfg.Input.Templates)
	assert.Equal(t, "blog", cfg.Input.Posts)
	assert.Equal(t, "css", cfg.Input.Styles)
	assert.Empty(t, cfg.Input.Static)
	assert.Equal(t, "./output", cfg.Output.Root)
	assert.Equal(t, "error", cfg.Build.Duplicates)
	assert.Equal(t, "minify", cfg.Stylesheet.Compiler)
	assert.Equal(t, 3*time.Second, cfg.Watch.Debounce)
	assert.False(t, cfg.Watch.FailOnInitialError)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NotNil(t, cfg.Links)

	assert.Equal(t, "input/templates", cfg.TemplatesDir())
	assert.Equal(t, "input/blog", cfg.PostsDir())
	assert.Equal(t, "input/css", cfg.StylesDir())
	assert.Empty(t, cfg.StaticDir())
}

func TestLoadFromYAML(t *testing.T) {
	cfg, err := loadYAML(t, `
input:
  root: site
  posts: posts
  static: static
output:
  root: public
build:
  duplicates: Last-Wins
markdown:
  extensions: [gfm, footnote]
  unsafe: true
stylesheet:
  compiler: command
  command: sass --stdin --style=compressed
links:
  link-github: https://github.com/someone
  link-mastodon: https://example.social/@someone
watch:
  debounce: 500ms
  fail_on_initial_error: true
log:
  level: DEBUG
  format: json
`)
	require.NoError(t, err)

	assert.Equal(t, "site/posts", cfg.PostsDir())
	assert.Equal(t, "site/templates", cfg.TemplatesDir())
	assert.Equal(t, "site/static", cfg.StaticDir())
	assert.Equal(t, "public", cfg.Output.Root)
	assert.Equal(t, "last-wins", cfg.Build.Duplicates)
	assert.Equal(t, []string{"gfm", "footnote"}, cfg.Markdown.Extensions)
	assert.True(t, cfg.Markdown.Unsafe)
	assert.Equal(t, "command", cfg.Stylesheet.Compiler)
	assert.Equal(t, "sass --stdin --style=compressed", cfg.Stylesheet.Command)
	assert.Equal(t, "https://example.social/@someone", cfg.Links["link-mastodon"])
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.FailOnInitialError)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadWithEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("QUIRE_OUTPUT_ROOT", "/srv/www")
	t.Setenv("QUIRE_WATCH_DEBOUNCE", "250ms")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/www", cfg.Output.Root)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"duplicates policy":      "build:\n  duplicates: first-wins\n",
		"compiler":               "stylesheet:\n  compiler: scss\n",
		"command without line":   "stylesheet:\n  compiler: command\n",
		"absolute templates dir": "input:\n  templates: /etc\n",
		"escaping posts dir":     "input:\n  posts: ../elsewhere\n",
		"empty output root":      "output:\n  root: \"\"\n",
		"bad link":               "links:\n  link-x: javascript:alert(1)\n",
		"negative debounce":      "watch:\n  debounce: -1s\n",
		"log level":              "log:\n  level: loud\n",
		"log format":             "log:\n  format: xml\n",
		"undecodable debounce":   "watch:\n  debounce: soon\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := loadYAML(t, doc)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, siteerrors.ErrConfig)
			assert.False(t, siteerrors.IsRecoverable(err))
		})
	}
}

func TestValidateReportsField(t *testing.T) {
	cfg := Config{
		Input:      InputConfig{Root: "in", Templates: "t", Posts: "p", Styles: "s"},
		Output:     OutputConfig{Root: "out"},
		Stylesheet: StylesheetConfig{Compiler: "minify"},
		Links:      map[string]string{"link-about": "about.html"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link-about")

	cfg.Links["link-about"] = "/about.html"
	assert.NoError(t, cfg.Validate())
}
