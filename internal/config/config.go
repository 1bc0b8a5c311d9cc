// Package config provides configuration management for navcheck using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration describes the site snapshot to validate: the content root
// and its layout, how markup regions are located, which control labels belong
// to which completion class, and the ordered module sequences of every
// (path, stage) pair. The loaded Config is an explicit value handed to the
// checker; nothing in the validation core reads Viper directly.
package config

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	Site      SiteConfig       `mapstructure:"site" yaml:"site"`
	Resolver  ResolverConfig   `mapstructure:"resolver" yaml:"resolver"`
	Markup    MarkupConfig     `mapstructure:"markup" yaml:"markup"`
	Labels    LabelsConfig     `mapstructure:"labels" yaml:"labels"`
	Sequences []SequenceConfig `mapstructure:"sequences" yaml:"sequences"`
	Check     CheckConfig      `mapstructure:"check" yaml:"check"`
	Output    OutputConfig     `mapstructure:"output" yaml:"output"`
}

type SiteConfig struct {
	Root       string   `mapstructure:"root" yaml:"root"`
	PathsDir   string   `mapstructure:"paths_dir" yaml:"paths_dir"`
	IndexFile  string   `mapstructure:"index_file" yaml:"index_file"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Exclude    []string `mapstructure:"exclude" yaml:"exclude"`
}

type ResolverConfig struct {
	// DirectoryIndex makes a directory reference resolve to its index document.
	DirectoryIndex bool `mapstructure:"directory_index" yaml:"directory_index"`
}

type MarkupConfig struct {
	NavigationSelector string `mapstructure:"navigation_selector" yaml:"navigation_selector"`
	BreadcrumbSelector string `mapstructure:"breadcrumb_selector" yaml:"breadcrumb_selector"`
	ReferenceSelector  string `mapstructure:"reference_selector" yaml:"reference_selector"`
	SourceSelector     string `mapstructure:"source_selector" yaml:"source_selector"`
	ControlSelector    string `mapstructure:"control_selector" yaml:"control_selector"`
}

// LabelsConfig holds the control-label taxonomy. A label belongs to a class
// when it contains one of the class tokens, ignoring case and spacing.
type LabelsConfig struct {
	Continue      []string `mapstructure:"continue" yaml:"continue"`
	CompleteStage []string `mapstructure:"complete_stage" yaml:"complete_stage"`
	FinishPath    []string `mapstructure:"finish_path" yaml:"finish_path"`
}

// SequenceConfig declares the module ordering of one stage. An empty Modules
// list asks for discovery from the scanned files.
type SequenceConfig struct {
	Path    string   `mapstructure:"path" yaml:"path"`
	Stage   string   `mapstructure:"stage" yaml:"stage"`
	Modules []string `mapstructure:"modules" yaml:"modules,omitempty"`
	Final   bool     `mapstructure:"final" yaml:"final,omitempty"`
}

// Key returns the stage key used in reports ("path/stage").
func (s SequenceConfig) Key() string {
	return s.Path + "/" + s.Stage
}

type CheckConfig struct {
	Workers       int    `mapstructure:"workers" yaml:"workers"`
	Strict        bool   `mapstructure:"strict" yaml:"strict"`
	ModulePattern string `mapstructure:"module_pattern" yaml:"module_pattern"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
	// Inventory adds the per-file reference listing to the report.
	Inventory bool `mapstructure:"inventory" yaml:"inventory"`
}

// Output formats understood by the report renderers.
var OutputFormats = []string{"console", "json", "yaml", "html"}

// Defaults observed on the live content inventory.
var (
	DefaultContinueLabels      = []string{"Continue"}
	DefaultCompleteStageLabels = []string{"Complete Stage", "Finish Stage"}
	DefaultFinishPathLabels    = []string{"🎉", "Complete The", "Finish Path"}
)

const (
	DefaultPathsDir           = "paths"
	DefaultIndexFile          = "index.html"
	DefaultNavigationSelector = "nav.module-navigation"
	DefaultBreadcrumbSelector = ".breadcrumb"
	DefaultReferenceSelector  = "a[href], area[href], link[href]"
	DefaultSourceSelector     = "[src]"
	DefaultControlSelector    = "button, [role=button], input[type=button], input[type=submit], a:not([href])"
	DefaultModulePattern      = "module-*.html"
	maxDefaultWorkers         = 8
)

// Load builds a Config from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds a Config from v, applies defaults for unset keys and
// validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config, v.IsSet)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a Config with every default applied and no sequences.
func Default() *Config {
	config := &Config{}
	applyDefaults(config, func(string) bool { return false })
	return config
}

// applyDefaults fills zero values. isSet reports whether a key was set
// explicitly, which matters for booleans whose default is true.
func applyDefaults(config *Config, isSet func(key string) bool) {
	if config.Site.Root == "" {
		config.Site.Root = "."
	}
	if config.Site.PathsDir == "" {
		config.Site.PathsDir = DefaultPathsDir
	}
	if config.Site.IndexFile == "" {
		config.Site.IndexFile = DefaultIndexFile
	}
	if len(config.Site.Extensions) == 0 {
		config.Site.Extensions = []string{".html", ".htm"}
	}
	if len(config.Site.Exclude) == 0 && !isSet("site.exclude") {
		config.Site.Exclude = []string{"node_modules", ".git", "dist", "build"}
	}

	if !isSet("resolver.directory_index") {
		config.Resolver.DirectoryIndex = true
	}

	if config.Markup.NavigationSelector == "" {
		config.Markup.NavigationSelector = DefaultNavigationSelector
	}
	if config.Markup.BreadcrumbSelector == "" {
		config.Markup.BreadcrumbSelector = DefaultBreadcrumbSelector
	}
	if config.Markup.ReferenceSelector == "" {
		config.Markup.ReferenceSelector = DefaultReferenceSelector
	}
	if config.Markup.SourceSelector == "" {
		config.Markup.SourceSelector = DefaultSourceSelector
	}
	if config.Markup.ControlSelector == "" {
		config.Markup.ControlSelector = DefaultControlSelector
	}

	if len(config.Labels.Continue) == 0 {
		config.Labels.Continue = append([]string(nil), DefaultContinueLabels...)
	}
	if len(config.Labels.CompleteStage) == 0 {
		config.Labels.CompleteStage = append([]string(nil), DefaultCompleteStageLabels...)
	}
	if len(config.Labels.FinishPath) == 0 {
		config.Labels.FinishPath = append([]string(nil), DefaultFinishPathLabels...)
	}

	if config.Check.Workers == 0 {
		config.Check.Workers = defaultWorkers()
	}
	if config.Check.ModulePattern == "" {
		config.Check.ModulePattern = DefaultModulePattern
	}

	if config.Output.Format == "" {
		config.Output.Format = "console"
	}
}

// Keys returns every dotted configuration key in declaration order. Sequences
// are left out since they can only come from a config file.
func Keys() []string {
	return appendKeys(nil, "", reflect.TypeOf(Config{}))
}

func appendKeys(keys []string, prefix string, t reflect.Type) []string {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "sequences" {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			keys = appendKeys(keys, prefix+tag+".", field.Type)
			continue
		}
		keys = append(keys, prefix+tag)
	}
	return keys
}

func defaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > maxDefaultWorkers {
		workers = maxDefaultWorkers
	}
	return workers
}

// FinalStages maps each path to its final stage: the stage flagged final, or
// else the last stage configured for that path.
func (c *Config) FinalStages() map[string]string {
	final := make(map[string]string)
	flagged := make(map[string]bool)
	for _, seq := range c.Sequences {
		if flagged[seq.Path] {
			continue
		}
		final[seq.Path] = seq.Stage
		if seq.Final {
			flagged[seq.Path] = true
		}
	}
	return final
}
