package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quire/internal/build"
	"github.com/conneroisu/quire/internal/services"
	"github.com/conneroisu/quire/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Build the site, then rebuild it whenever the input changes",
	Long: `Run an initial build, then watch the input root recursively and rebuild
once per burst of changes. Bursts are debounced; a change that arrives while a
rebuild is running is picked up by the next one.

A failed rebuild is logged and the watcher keeps going. Press Ctrl+C to stop.

Examples:
  quire watch
  quire watch --debounce 500ms
  quire watch --fail-on-initial-error`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("debounce", 3*time.Second, "quiet period before a burst of changes triggers a rebuild")
	watchCmd.Flags().Bool("fail-on-initial-error", false, "exit when the initial build fails")
	bindFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	bindFlag("watch.fail_on_initial_error", watchCmd.Flags().Lookup("fail-on-initial-error"))
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	w.AddFilter(watcher.NoHiddenUnder(cfg.Input.Root))
	w.AddFilter(watcher.NoEditorTempFilter)
	w.AddFilter(watcher.NotUnder(cfg.Output.Root))
	if err := w.AddRecursive(cfg.Input.Root); err != nil {
		return err
	}
	w.Start(ctx)

	return services.NewWatchService(svc, w.Notifications(), services.WatchOptions{
		FailOnInitialError: cfg.Watch.FailOnInitialError,
		Progress:           cmd.OutOrStdout(),
		Logger:             logger,
		Metrics:            build.NewMetrics(),
	}).Run(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
