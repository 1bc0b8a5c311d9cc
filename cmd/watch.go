package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/navcheck/internal/checker"
	"github.com/conneroisu/navcheck/internal/report"
	"github.com/conneroisu/navcheck/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-check the site whenever content changes",
	Long: `Run a check, then watch the site root and run it again after every burst of
content changes. Each run prints the console summary.

Examples:
  navcheck watch                     # Watch the site in the current directory
  navcheck watch --root public       # Watch another directory
  navcheck watch --debounce 1s       # Wait longer for edits to settle`,
	RunE: runWatch,
}

var (
	watchOpts     checkFlags
	watchDebounce time.Duration
	watchVerbose  bool
)

func init() {
	rootCmd.AddCommand(watchCmd)
	addCheckFlags(watchCmd, &watchOpts, false)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Quiet period before re-checking")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "List changed files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	c, err := checker.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()

	fileWatcher, err := watcher.NewFileWatcher(c.Scanner().Root(), watchDebounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.ExtensionFilter(cfg.Site.Extensions...))
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.SkipDirs(c.Scanner().IsExcluded)

	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintf(out, "📁 File changes detected:\n")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "📁 %d file(s) changed\n", len(events))
		}
		return checkOnce(ctx, c, out)
	})

	fmt.Fprintf(out, "🔍 Watching %s\n", c.Scanner().Root())
	if err := fileWatcher.AddRecursive(); err != nil {
		return fmt.Errorf("failed to watch site root: %w", err)
	}

	if err := checkOnce(ctx, c, out); err != nil {
		return err
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintln(out, "👀 Watching for changes... (Press Ctrl+C to stop)")
	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")

	return nil
}

// checkOnce runs the checker and prints the console summary. A failed check
// is reported, not returned.
func checkOnce(ctx context.Context, c *checker.Checker, out io.Writer) error {
	rep, err := c.Run(ctx)
	if rep == nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return report.RenderConsole(out, rep)
}
