// Package config loads quire's configuration through Viper from a YAML file,
// QUIRE_* environment variables and command-line flags.
//
// Source directories are given relative to input.root:
//
//	input:
//	  root: ./input
//	  templates: templates
//	  posts: blog
//	  styles: css
//	output:
//	  root: ./output
//	watch:
//	  debounce: 3s
package config

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	siteerrors "github.com/conneroisu/quire/internal/errors"
)

// EnvPrefix prefixes environment overrides, e.g. QUIRE_OUTPUT_ROOT.
const EnvPrefix = "QUIRE"

// DefaultDebounce is the default quiet period before a rebuild.
const DefaultDebounce = 3 * time.Second

type Config struct {
	Input      InputConfig       `mapstructure:"input" yaml:"input" json:"input"`
	Output     OutputConfig      `mapstructure:"output" yaml:"output" json:"output"`
	Build      BuildConfig       `mapstructure:"build" yaml:"build" json:"build"`
	Markdown   MarkdownConfig    `mapstructure:"markdown" yaml:"markdown" json:"markdown"`
	Stylesheet StylesheetConfig  `mapstructure:"stylesheet" yaml:"stylesheet" json:"stylesheet"`
	Links      map[string]string `mapstructure:"links" yaml:"links" json:"links"`
	Watch      WatchConfig       `mapstructure:"watch" yaml:"watch" json:"watch"`
	Log        LogConfig         `mapstructure:"log" yaml:"log" json:"log"`
}

type InputConfig struct {
	Root      string `mapstructure:"root" yaml:"root" json:"root"`
	Templates string `mapstructure:"templates" yaml:"templates" json:"templates"`
	Posts     string `mapstructure:"posts" yaml:"posts" json:"posts"`
	Styles    string `mapstructure:"styles" yaml:"styles" json:"styles"`
	// Static is optional; its files are copied unchanged to the same
	// relative path under the output root.
	Static string `mapstructure:"static" yaml:"static,omitempty" json:"static,omitempty"`
}

type OutputConfig struct {
	Root string `mapstructure:"root" yaml:"root" json:"root"`
}

type BuildConfig struct {
	// Duplicates is "error" or "last-wins".
	Duplicates string `mapstructure:"duplicates" yaml:"duplicates" json:"duplicates"`
}

type MarkdownConfig struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions" json:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps" yaml:"hard_wraps" json:"hard_wraps"`
	Unsafe     bool     `mapstructure:"unsafe" yaml:"unsafe" json:"unsafe"`
	HeadingIDs bool     `mapstructure:"heading_ids" yaml:"heading_ids" json:"heading_ids"`
}

type StylesheetConfig struct {
	// Compiler is "minify" or "command".
	Compiler string `mapstructure:"compiler" yaml:"compiler" json:"compiler"`
	Command  string `mapstructure:"command" yaml:"command,omitempty" json:"command,omitempty"`
}

type WatchConfig struct {
	Debounce           time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
	FailOnInitialError bool          `mapstructure:"fail_on_initial_error" yaml:"fail_on_initial_error" json:"fail_on_initial_error"`
}

// MarshalYAML writes the debounce in time.Duration notation ("3s").
func (w WatchConfig) MarshalYAML() (interface{}, error) {
	return watchConfigText{Debounce: w.Debounce.String(), FailOnInitialError: w.FailOnInitialError}, nil
}

// MarshalJSON writes the debounce in time.Duration notation ("3s").
func (w WatchConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(watchConfigText{Debounce: w.Debounce.String(), FailOnInitialError: w.FailOnInitialError})
}

type watchConfigText struct {
	Debounce           string `yaml:"debounce" json:"debounce"`
	FailOnInitialError bool   `yaml:"fail_on_initial_error" json:"fail_on_initial_error"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Defaults are registered on Viper by SetDefaults.
var defaults = map[string]any{
	"input.root":                  "./input",
	"input.templates":             "templates",
	"input.posts":                 "blog",
	"input.styles":                "css",
	"input.static":                "",
	"output.root":                 "./output",
	"build.duplicates":            "error",
	"markdown.extensions":         []string{},
	"markdown.hard_wraps":         false,
	"markdown.unsafe":             false,
	"markdown.heading_ids":        false,
	"stylesheet.compiler":         "minify",
	"stylesheet.command":          "",
	"watch.debounce":              DefaultDebounce,
	"watch.fail_on_initial_error": false,
	"log.level":                   "info",
	"log.format":                  "text",
}

// SetDefaults registers default values on the global Viper instance. Every
// key gets a default so environment overrides bind during Unmarshal.
func SetDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// Load unmarshals the global Viper instance and validates the result.
func Load() (*Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, siteerrors.NewConfigError("could not decode configuration", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, siteerrors.NewConfigError("invalid configuration", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Build.Duplicates = strings.ToLower(strings.TrimSpace(c.Build.Duplicates))
	c.Stylesheet.Compiler = strings.ToLower(strings.TrimSpace(c.Stylesheet.Compiler))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Links == nil {
		c.Links = map[string]string{}
	}
}

// TemplatesDir returns the templates tree.
func (c *Config) TemplatesDir() string { return filepath.Join(c.Input.Root, c.Input.Templates) }

// PostsDir returns the posts tree.
func (c *Config) PostsDir() string { return filepath.Join(c.Input.Root, c.Input.Posts) }

// StylesDir returns the stylesheet tree.
func (c *Config) StylesDir() string { return filepath.Join(c.Input.Root, c.Input.Styles) }

// StaticDir returns the static tree, or "" when none is configured.
func (c *Config) StaticDir() string {
	if c.Input.Static == "" {
		return ""
	}
	return filepath.Join(c.Input.Root, c.Input.Static)
}
