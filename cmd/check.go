package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/navcheck/internal/checker"
	"github.com/conneroisu/navcheck/internal/config"
	"github.com/conneroisu/navcheck/internal/report"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Aliases: []string{"c"},
	Short:   "Check links and module navigation once",
	Long: `Scan the site root, resolve every internal link and validate the navigation
of each configured stage, then print a report.

The command exits non-zero when any link is broken, a module lacks its
navigation region, a module's navigation breaks its sequence or a file cannot
be read. With --strict, advisories such as a stage mixing absolute and
relative navigation links fail the check too.

Examples:
  navcheck check                          # Check the site in the current directory
  navcheck check --root public            # Check another directory
  navcheck check --format json            # Machine-readable report on stdout
  navcheck check -f json --inventory      # Include every file's references
  navcheck check -f html -o report.html   # Standalone HTML report`,
	RunE: runCheck,
}

var checkOpts checkFlags

func init() {
	rootCmd.AddCommand(checkCmd)
	addCheckFlags(checkCmd, &checkOpts, true)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := checker.New(cfg, newLogger(cmd))
	if err != nil {
		return err
	}

	rep, runErr := c.Run(ctx)
	if rep == nil {
		return runErr
	}

	if err := writeReport(ctx, cmd.OutOrStdout(), rep, cfg.Output); err != nil {
		return err
	}
	return runErr
}

// loadConfig binds the command's flags and loads the effective configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := readConfig(cmd); err != nil {
		return nil, err
	}
	if err := bindFlags(cmd, checkBindings); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// writeReport renders rep to the configured file, or to stdout when none is set.
func writeReport(ctx context.Context, stdout io.Writer, rep *report.Report, output config.OutputConfig) error {
	if output.File == "" {
		return report.Render(ctx, stdout, rep, output.Format)
	}

	f, err := os.Create(output.File)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := report.Render(ctx, f, rep, output.Format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(stdout, "📄 Report written to %s\n", output.File)
	return nil
}
