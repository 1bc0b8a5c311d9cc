package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/navcheck/internal/checker"
	"github.com/conneroisu/navcheck/internal/config"
	"github.com/conneroisu/navcheck/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "navcheck",
	Short: "Validate links and module navigation of a learning-path site",
	Long: `navcheck scans a built static site organised as learning paths, stages and
modules. It resolves every internal link against the files on disk and checks
that each module's navigation region links back to the right place and offers
the control its position in the sequence calls for.

Quick Start:
  navcheck check                  Check the site in the current directory
  navcheck check --format html -o report.html
  navcheck watch                  Re-check on every content change
  navcheck config                 Show the effective configuration

Command Aliases (for faster typing):
  check (c), watch (w)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// A failed check is already described by its report, so only other errors
// are printed.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, checker.ErrCheckFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .navcheck.yml, can also use NAVCHECK_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	AddFlagValidation(rootCmd.PersistentFlags(), "log-level", ValidateLogLevel)
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. NAVCHECK_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .navcheck.yml in current directory
//
// Values may also come from NAVCHECK_ prefixed environment variables
// (e.g., NAVCHECK_CHECK_STRICT=true, NAVCHECK_SITE_PATHS_DIR=public) for
// every key except sequences.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("NAVCHECK_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".navcheck")
	}

	viper.SetEnvPrefix("NAVCHECK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees keys viper knows about
	for _, key := range config.Keys() {
		_ = viper.BindEnv(key)
	}
}

// readConfig loads the configuration file chosen by initConfig. A missing
// default file is fine; an explicitly named one that cannot be read is not.
func readConfig(cmd *cobra.Command) error {
	err := viper.ReadInConfig()
	if err == nil {
		logger := newLogger(cmd)
		logger.Debug(cmd.Context(), "Using config file", "path", viper.ConfigFileUsed())
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read configuration: %w", err)
}

// newLogger builds the stderr logger for the --log-level flag.
func newLogger(cmd *cobra.Command) logging.Logger {
	level := logging.LevelInfo
	if value, err := cmd.Flags().GetString("log-level"); err == nil {
		if parsed, err := logging.ParseLevel(value); err == nil {
			level = parsed
		}
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})
}
