package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quire/internal/version"
)

var (
	versionFlags    *FormatFlags
	versionShort    bool
	versionDetailed bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the quire version, git commit, build time, Go version and
target platform.

Examples:
  quire version               # Version and short commit
  quire version --detailed    # Every field
  quire version --format json # As JSON`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionFlags = AddFormatFlag(versionCmd, "text", "text", "json")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "show the version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "show detailed version information")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if err := ValidateFormat(versionFlags.Format, "text", "json"); err != nil {
		return err
	}

	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case versionFlags.Format == "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case versionShort:
		fmt.Fprintln(out, info.Version)
	case versionDetailed:
		fmt.Fprintln(out, info.Detailed())
	default:
		line := "quire " + info.Short()
		if info.Dirty {
			line += " (dirty)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
