// Configuration System:
//
//	Settings are resolved from several sources, highest priority first:
//	1. Command-line flags (--input, --output, --debounce, ...)
//	2. Individual environment variables (QUIRE_OUTPUT_ROOT, ...)
//	3. The configuration file: --config, then QUIRE_CONFIG_FILE, then .quire.yml
//	4. Built-in defaults
//
// Environment Variables:
//
//	QUIRE_CONFIG_FILE: Path to a configuration file
//	QUIRE_INPUT_ROOT: Override the input root
//	QUIRE_WATCH_DEBOUNCE: Override the watch debounce window
//	And every other key following the QUIRE_<SECTION>_<OPTION> pattern

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/quire/internal/config"
	"github.com/conneroisu/quire/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "Build a static blog from templates, Markdown posts and stylesheets",
	Long: `Quire turns a directory of HTML templates, Markdown posts with TOML
front matter and stylesheets into a static site, and can rebuild it whenever
the input tree changes.

Quick Start:
  quire init                      Create an input tree and .quire.yml
  quire new "Hello World"         Create input/blog/hello-world.md
  quire build                     Build the site once
  quire watch                     Build, then rebuild on every change
  quire config show               Print the resolved configuration

Command Aliases:
  build (b), watch (w)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .quire.yml, can also use QUIRE_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.StringP("input", "i", "./input", "input root holding templates, posts and styles")
	flags.StringP("output", "o", "./output", "output root the site is written to")

	bindFlag("log.level", flags.Lookup("log-level"))
	bindFlag("log.format", flags.Lookup("log-format"))
	bindFlag("input.root", flags.Lookup("input"))
	bindFlag("output.root", flags.Lookup("output"))
}

// initConfig points Viper at the configuration file and the environment.
// A missing file is not an error; defaults and environment still apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quire")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the configuration and a logger for it.
func loadConfig(w io.Writer) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg.Log, w), nil
}

func newLogger(cfg config.LogConfig, w io.Writer) logging.Logger {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Format,
		Output:    w,
		Component: "quire",
	})
}
