package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quire/internal/services"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the site once",
	Long: `Run a single build pass: load templates, parse posts, compile
stylesheets and write the index, blog list and one page per post.

The pass stops at the first failure and exits non-zero.

Examples:
  quire build
  quire build --input ./site --output ./public
  quire build --duplicates last-wins`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("duplicates", "error", "policy for two inputs with the same name (error, last-wins)")
	bindFlag("build.duplicates", buildCmd.Flags().Lookup("duplicates"))
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	svc, err := services.NewBuildService(cfg, logger)
	if err != nil {
		return err
	}
	if err := svc.Prepare(); err != nil {
		return err
	}

	result, err := svc.Run(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %d posts, %d templates, %d stylesheets", result.Posts, result.Templates, result.Stylesheets)
	if result.Static > 0 {
		fmt.Fprintf(out, ", %d static files", result.Static)
	}
	fmt.Fprintf(out, " (%s) into %s in %s\n", result.HumanBytes(), cfg.Output.Root, result.Duration.Round(time.Millisecond))
	return nil
}
