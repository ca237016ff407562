package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quire/internal/services"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create an input tree and configuration file",
	Long: `Create the input layout quire builds from, a sample index, blog list
and post template, a first post, a stylesheet and a .quire.yml holding the
default settings.

Existing files are left alone unless --force is given.

Examples:
  quire init                  # Scaffold in the current directory
  quire init my-blog          # Scaffold in ./my-blog
  quire init --minimal        # Directories and configuration only`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initMinimal bool
	initForce   bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "create directories and configuration only")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	result, err := services.NewInitService().InitProject(services.InitOptions{
		ProjectDir: dir,
		Minimal:    initMinimal,
		Force:      initForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rel := range result.Created {
		fmt.Fprintf(out, "created %s\n", rel)
	}
	for _, rel := range result.Skipped {
		fmt.Fprintf(out, "skipped %s (exists)\n", rel)
	}
	fmt.Fprintln(out, "Run 'quire build' to build the site.")
	return nil
}
