package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// OutputFormats lists the encodings accepted by --format.
var OutputFormats = []string{"text", "yaml", "json"}

// FormatFlags is shared by the commands that print structured data.
type FormatFlags struct {
	Format string
}

// AddFormatFlag registers --format on cmd with def as its default.
func AddFormatFlag(cmd *cobra.Command, def string, allowed ...string) *FormatFlags {
	if len(allowed) == 0 {
		allowed = OutputFormats
	}
	flags := &FormatFlags{}
	cmd.Flags().StringVarP(&flags.Format, "format", "f", def,
		fmt.Sprintf("Output format (%s)", strings.Join(allowed, "|")))
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return allowed, cobra.ShellCompDirectiveNoFileComp
	})
	return flags
}

// ValidateFormat rejects formats outside allowed.
func ValidateFormat(format string, allowed ...string) error {
	if len(allowed) == 0 {
		allowed = OutputFormats
	}
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("invalid format %q (want %s)", format, strings.Join(allowed, "|"))
	}
	return nil
}

// bindFlag ties a configuration key to a flag. The flag only overrides the
// file and environment when it is set on the command line.
func bindFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("no flag bound to %q", key))
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
