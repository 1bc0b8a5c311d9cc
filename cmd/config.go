package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/navcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration navcheck would run with, after merging the
configuration file, NAVCHECK_ environment variables and defaults.

Examples:
  navcheck config                          # Print the effective configuration
  navcheck config --config site.yml        # Print another file's result
  navcheck config validate                 # Only check that it is valid`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration and report whether it is valid. Selectors are
compiled, sequences are checked for duplicates and module names must be plain
file names.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return encoder.Close()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✅ Configuration is valid")
	fmt.Fprintf(out, "   Site root: %s\n", cfg.Site.Root)
	fmt.Fprintf(out, "   Sequences: %d\n", len(cfg.Sequences))
	for _, final := range sortedFinalStages(cfg) {
		fmt.Fprintf(out, "   Final stage of %s: %s\n", final.path, final.stage)
	}
	return nil
}

type finalStage struct{ path, stage string }

// sortedFinalStages lists each path's final stage in configuration order.
func sortedFinalStages(cfg *config.Config) []finalStage {
	final := cfg.FinalStages()
	seen := make(map[string]bool, len(final))
	stages := make([]finalStage, 0, len(final))
	for _, seq := range cfg.Sequences {
		if seen[seq.Path] {
			continue
		}
		seen[seq.Path] = true
		stages = append(stages, finalStage{path: seq.Path, stage: final[seq.Path]})
	}
	return stages
}
