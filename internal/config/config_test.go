package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "defaults",
			setup: func(v *viper.Viper) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ".", cfg.Site.Root)
				assert.Equal(t, "paths", cfg.Site.PathsDir)
				assert.Equal(t, "index.html", cfg.Site.IndexFile)
				assert.Equal(t, []string{".html", ".htm"}, cfg.Site.Extensions)
				assert.Equal(t, []string{"node_modules", ".git", "dist", "build"}, cfg.Site.Exclude)
				assert.True(t, cfg.Resolver.DirectoryIndex)
				assert.Equal(t, DefaultNavigationSelector, cfg.Markup.NavigationSelector)
				assert.Equal(t, "a[href], area[href], link[href]", cfg.Markup.ReferenceSelector)
				assert.Equal(t, "[src]", cfg.Markup.SourceSelector)
				assert.False(t, cfg.Output.Inventory)
				assert.Equal(t, DefaultContinueLabels, cfg.Labels.Continue)
				assert.Equal(t, "console", cfg.Output.Format)
				assert.Positive(t, cfg.Check.Workers)
				assert.LessOrEqual(t, cfg.Check.Workers, 8)
			},
		},
		{
			name: "directory index explicitly disabled",
			setup: func(v *viper.Viper) {
				v.Set("resolver.directory_index", false)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Resolver.DirectoryIndex)
			},
		},
		{
			name: "sequences from config",
			setup: func(v *viper.Viper) {
				v.Set("site.root", "./site")
				v.Set("sequences", []map[string]interface{}{
					{"path": "builder", "stage": "stage-1", "modules": []string{"module-1.html", "module-2.html"}},
					{"path": "builder", "stage": "stage-2"},
				})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "./site", cfg.Site.Root)
				require.Len(t, cfg.Sequences, 2)
				assert.Equal(t, "builder/stage-1", cfg.Sequences[0].Key())
				assert.Equal(t, []string{"module-1.html", "module-2.html"}, cfg.Sequences[0].Modules)
				assert.Empty(t, cfg.Sequences[1].Modules)
			},
		},
		{
			name: "invalid output format",
			setup: func(v *viper.Viper) {
				v.Set("output.format", "xml")
			},
			expectError: true,
		},
		{
			name: "invalid selector",
			setup: func(v *viper.Viper) {
				v.Set("markup.navigation_selector", "nav[")
			},
			expectError: true,
		},
		{
			name: "invalid source selector",
			setup: func(v *viper.Viper) {
				v.Set("markup.source_selector", "img[")
			},
			expectError: true,
		},
		{
			name: "unmarshal failure",
			setup: func(v *viper.Viper) {
				v.Set("check.workers", "many")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			cfg, err := LoadFrom(v)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.check(t, cfg)
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, "site.root")
	assert.Contains(t, keys, "site.paths_dir")
	assert.Contains(t, keys, "resolver.directory_index")
	assert.Contains(t, keys, "markup.source_selector")
	assert.Contains(t, keys, "labels.finish_path")
	assert.Contains(t, keys, "check.module_pattern")
	assert.Contains(t, keys, "output.inventory")
	assert.NotContains(t, keys, "sequences")
	assert.Equal(t, "site.root", keys[0])
	for _, key := range keys {
		assert.NotContains(t, key, "sequences", key)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NAVCHECK_SITE_PATHS_DIR", "public")
	t.Setenv("NAVCHECK_OUTPUT_INVENTORY", "true")

	v := viper.New()
	v.SetEnvPrefix("NAVCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range Keys() {
		require.NoError(t, v.BindEnv(key))
	}

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Site.PathsDir)
	assert.True(t, cfg.Output.Inventory)
	assert.Equal(t, DefaultIndexFile, cfg.Site.IndexFile)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".navcheck.yml")
	content := `site:
  root: ./public
  exclude: []
labels:
  continue: ["Next", "Continue"]
sequences:
  - path: curious
    stage: stage-1
    modules: [module-1.html, module-2.html, module-3.html]
  - path: curious
    stage: stage-2
    final: true
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "./public", cfg.Site.Root)
	assert.Empty(t, cfg.Site.Exclude)
	assert.Equal(t, []string{"Next", "Continue"}, cfg.Labels.Continue)
	assert.Equal(t, DefaultCompleteStageLabels, cfg.Labels.CompleteStage)
	require.Len(t, cfg.Sequences, 2)
	assert.True(t, cfg.Sequences[1].Final)
	assert.Len(t, cfg.Sequences[0].Modules, 3)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		field   string
		wantErr bool
	}{
		{name: "valid default", mutate: func(cfg *Config) {}},
		{
			name:    "empty root",
			mutate:  func(cfg *Config) { cfg.Site.Root = " " },
			field:   "site.root",
			wantErr: true,
		},
		{
			name:    "traversing paths dir",
			mutate:  func(cfg *Config) { cfg.Site.PathsDir = "../paths" },
			field:   "site.paths_dir",
			wantErr: true,
		},
		{
			name:    "absolute paths dir",
			mutate:  func(cfg *Config) { cfg.Site.PathsDir = "/paths" },
			field:   "site.paths_dir",
			wantErr: true,
		},
		{
			name:    "index file with directory",
			mutate:  func(cfg *Config) { cfg.Site.IndexFile = "a/index.html" },
			field:   "site.index_file",
			wantErr: true,
		},
		{
			name:    "extension without dot",
			mutate:  func(cfg *Config) { cfg.Site.Extensions = []string{"html"} },
			field:   "site.extensions",
			wantErr: true,
		},
		{
			name: "duplicate sequence",
			mutate: func(cfg *Config) {
				cfg.Sequences = []SequenceConfig{
					{Path: "builder", Stage: "stage-1"},
					{Path: "builder", Stage: "stage-1"},
				}
			},
			field:   "sequences[1]",
			wantErr: true,
		},
		{
			name: "module with directory",
			mutate: func(cfg *Config) {
				cfg.Sequences = []SequenceConfig{
					{Path: "builder", Stage: "stage-1", Modules: []string{"../module-1.html"}},
				}
			},
			field:   "sequences[0].modules",
			wantErr: true,
		},
		{
			name: "duplicate module",
			mutate: func(cfg *Config) {
				cfg.Sequences = []SequenceConfig{
					{Path: "builder", Stage: "stage-1", Modules: []string{"m.html", "m.html"}},
				}
			},
			field:   "sequences[0].modules",
			wantErr: true,
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Check.Workers = -1 },
			field:   "check.workers",
			wantErr: true,
		},
		{
			name:    "blank label token",
			mutate:  func(cfg *Config) { cfg.Labels.FinishPath = []string{" "} },
			field:   "labels.finish_path",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, naverrors.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestFinalStages(t *testing.T) {
	cfg := Default()
	cfg.Sequences = []SequenceConfig{
		{Path: "builder", Stage: "stage-1"},
		{Path: "curious", Stage: "stage-1"},
		{Path: "builder", Stage: "stage-2"},
		{Path: "curious", Stage: "stage-2", Final: true},
		{Path: "curious", Stage: "bonus"},
	}

	assert.Equal(t, map[string]string{
		"builder": "stage-2",
		"curious": "stage-2",
	}, cfg.FinalStages())
}

func TestConfigBuilder(t *testing.T) {
	cfg, err := NewConfigBuilder().
		WithRoot("site").
		WithSequence("builder", "stage-1", "module-1.html", "module-2.html").
		WithFinalSequence("builder", "stage-2").
		WithDirectoryIndex(false).
		WithLabels([]string{"Next"}, nil, nil).
		WithWorkers(2).
		WithStrict(true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "site", cfg.Site.Root)
	require.Len(t, cfg.Sequences, 2)
	assert.True(t, cfg.Sequences[1].Final)
	assert.False(t, cfg.Resolver.DirectoryIndex)
	assert.Equal(t, []string{"Next"}, cfg.Labels.Continue)
	assert.Equal(t, DefaultFinishPathLabels, cfg.Labels.FinishPath)
	assert.Equal(t, 2, cfg.Check.Workers)
	assert.True(t, cfg.Check.Strict)

	_, err = NewConfigBuilder().WithWorkers(-3).Build()
	assert.Error(t, err)
	assert.Panics(t, func() { NewConfigBuilder().WithRoot("").MustBuild() })
}
