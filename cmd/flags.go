package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/navcheck/internal/config"
	"github.com/conneroisu/navcheck/internal/logging"
)

// checkFlags are the flags shared by check and watch. Each one overrides a
// configuration key when set.
type checkFlags struct {
	Root       string
	Format     string
	OutputFile string
	Strict     bool
	Workers    int
	Inventory  bool
}

// checkBindings maps flag names to configuration keys.
var checkBindings = map[string]string{
	"root":        "site.root",
	"format":      "output.format",
	"output-file": "output.file",
	"strict":      "check.strict",
	"workers":     "check.workers",
	"inventory":   "output.inventory",
}

// addCheckFlags registers the site and check flags on cmd. Output flags are
// only added when withOutput is set.
func addCheckFlags(cmd *cobra.Command, flags *checkFlags, withOutput bool) {
	cmd.Flags().StringVarP(&flags.Root, "root", "r", "", "Site root directory (default \".\")")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Fail on advisories such as mixed link types")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "j", 0, "Concurrent file workers (default NumCPU, at most 8)")
	AddFlagValidation(cmd.Flags(), "workers", ValidateWorkers)

	if withOutput {
		cmd.Flags().StringVarP(&flags.Format, "format", "f", "",
			fmt.Sprintf("Report format (%s)", strings.Join(config.OutputFormats, "|")))
		cmd.Flags().StringVarP(&flags.OutputFile, "output-file", "o", "", "Write the report to a file instead of stdout")
		cmd.Flags().BoolVar(&flags.Inventory, "inventory", false, "List every reference of every file in the report")
		AddFlagValidation(cmd.Flags(), "format", ValidateFormat)
	}
}

// bindFlags binds the flags of cmd to their configuration keys. Binding
// happens when the command runs so that commands sharing a key do not
// overwrite each other's bindings.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, configKey := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(configKey, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(flags *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := flags.Lookup(flagName)
	if flag == nil {
		return
	}

	// Store original value setter
	originalSet := flag.Value.Set

	// Create wrapper that validates
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateFormat accepts the report formats.
func ValidateFormat(format string) error {
	if !slices.Contains(config.OutputFormats, format) {
		return fmt.Errorf("invalid output format %s, must be one of: %s",
			format, strings.Join(config.OutputFormats, ", "))
	}
	return nil
}

// ValidateLogLevel accepts the levels understood by the logger.
func ValidateLogLevel(level string) error {
	_, err := logging.ParseLevel(level)
	return err
}

// ValidateWorkers accepts a non-negative worker count.
func ValidateWorkers(value string) error {
	workers, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid worker count: %s", value)
	}
	if workers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", workers)
	}
	return nil
}
