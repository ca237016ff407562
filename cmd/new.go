package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quire/internal/post"
	"github.com/conneroisu/quire/internal/services"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new post",
	Long: `Create a Markdown post with front matter in the configured posts
directory. The slug, and so the file name, is derived from the title unless
--slug is given.

Examples:
  quire new "Hello World"                 # input/blog/hello-world.md
  quire new "Release notes" --slug v2-notes
  quire new "Backdated" --date 2023-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var (
	newSlug        string
	newDescription string
	newDate        string
	newForce       bool
)

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVar(&newSlug, "slug", "", "slug to use instead of one derived from the title")
	newCmd.Flags().StringVarP(&newDescription, "description", "d", "", "post description")
	newCmd.Flags().StringVar(&newDate, "date", "", "publish date, YYYY-MM-DD (default today)")
	newCmd.Flags().BoolVar(&newForce, "force", false, "overwrite an existing post")
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var date time.Time
	if newDate != "" {
		date, err = time.Parse(post.DateLayout, newDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", newDate, err)
		}
	}

	path, err := services.NewInitService().NewPost(services.NewPostOptions{
		PostsDir:    cfg.PostsDir(),
		Title:       args[0],
		Description: newDescription,
		Slug:        newSlug,
		Date:        date,
		Force:       newForce,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
