package config

// ConfigBuilder provides a fluent interface for building configurations in
// code, mostly for tests and embedding.
//
// Usage:
//
//	cfg, err := NewConfigBuilder().
//	    WithRoot("./site").
//	    WithSequence("builder", "stage-1", "module-1.html", "module-2.html").
//	    Build()
type ConfigBuilder struct {
	config *Config
}

// NewConfigBuilder creates a new configuration builder with defaults applied
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: Default()}
}

// WithRoot sets the site root directory
func (cb *ConfigBuilder) WithRoot(root string) *ConfigBuilder {
	cb.config.Site.Root = root
	return cb
}

// WithPathsDir sets the directory holding the learning paths
func (cb *ConfigBuilder) WithPathsDir(dir string) *ConfigBuilder {
	cb.config.Site.PathsDir = dir
	return cb
}

// WithSequence appends an ordered stage sequence. No modules means the
// ordering is discovered from the tree.
func (cb *ConfigBuilder) WithSequence(path, stage string, modules ...string) *ConfigBuilder {
	cb.config.Sequences = append(cb.config.Sequences, SequenceConfig{
		Path:    path,
		Stage:   stage,
		Modules: modules,
	})
	return cb
}

// WithFinalSequence appends a stage sequence flagged as its path's final stage
func (cb *ConfigBuilder) WithFinalSequence(path, stage string, modules ...string) *ConfigBuilder {
	cb.WithSequence(path, stage, modules...)
	cb.config.Sequences[len(cb.config.Sequences)-1].Final = true
	return cb
}

// WithDirectoryIndex toggles directory-to-index resolution
func (cb *ConfigBuilder) WithDirectoryIndex(enabled bool) *ConfigBuilder {
	cb.config.Resolver.DirectoryIndex = enabled
	return cb
}

// WithLabels replaces the control-label taxonomy. Nil sets keep their defaults.
func (cb *ConfigBuilder) WithLabels(continueTokens, completeStage, finishPath []string) *ConfigBuilder {
	if continueTokens != nil {
		cb.config.Labels.Continue = continueTokens
	}
	if completeStage != nil {
		cb.config.Labels.CompleteStage = completeStage
	}
	if finishPath != nil {
		cb.config.Labels.FinishPath = finishPath
	}
	return cb
}

// WithWorkers sets the fan-out width
func (cb *ConfigBuilder) WithWorkers(workers int) *ConfigBuilder {
	cb.config.Check.Workers = workers
	return cb
}

// WithStrict makes advisories fail the run
func (cb *ConfigBuilder) WithStrict(strict bool) *ConfigBuilder {
	cb.config.Check.Strict = strict
	return cb
}

// WithInventory adds the per-file reference listing to the report
func (cb *ConfigBuilder) WithInventory(enabled bool) *ConfigBuilder {
	cb.config.Output.Inventory = enabled
	return cb
}

// Build validates and returns the configuration
func (cb *ConfigBuilder) Build() (*Config, error) {
	if err := validateConfig(cb.config); err != nil {
		return nil, err
	}
	return cb.config, nil
}

// MustBuild is Build for callers that treat an invalid config as a bug
func (cb *ConfigBuilder) MustBuild() *Config {
	config, err := cb.Build()
	if err != nil {
		panic(err)
	}
	return config
}
