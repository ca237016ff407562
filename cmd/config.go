package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/quire/internal/config"
	siteerrors "github.com/conneroisu/quire/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect quire configuration",
	Long: `Inspect the configuration quire resolves from flags, environment
variables, the configuration file and built-in defaults.

Examples:
  quire config show                    # Show the resolved configuration
  quire config show --format json      # Show it as JSON
  quire config validate                # Validate .quire.yml
  quire config validate --file site.yml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration and report every invalid field.

Checks include the duplicate policy, the stylesheet compiler and its
command, the log level and format, the debounce window and every link URL.`,
	RunE: runConfigValidate,
}

var (
	configShowFlags *FormatFlags
	configFile      string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowFlags = AddFormatFlag(configShowCmd, "yaml", "yaml", "json")
	configValidateCmd.Flags().StringVar(&configFile, "file", "", "configuration file to validate (default: the active one)")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ValidateFormat(configShowFlags.Format, "yaml", "json"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configShowFlags.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return siteerrors.NewConfigError("could not read "+configFile, err)
		}
	}

	if _, err := config.Load(); err != nil {
		return err
	}

	source := viper.ConfigFileUsed()
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%s)\n", source)
	return nil
}
