package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/navcheck/internal/checker"
	"github.com/conneroisu/navcheck/internal/config"
	"github.com/conneroisu/navcheck/internal/logging"
	"github.com/conneroisu/navcheck/internal/report"
	"github.com/conneroisu/navcheck/internal/testutils"
)

func module(nav string, body string) string {
	return fmt.Sprintf(`<html><body><main>%s</main><nav class="module-navigation">%s</nav></body></html>`, body, nav)
}

// writeProject writes a one-stage builder site plus a config file naming it
// and returns the config path.
func writeProject(t *testing.T, overrides map[string]string) (string, string) {
	t.Helper()
	files := map[string]string{
		"paths/builder/stage-1/index.html":    `<html><body><a href="module-1.html">Start</a></body></html>`,
		"paths/builder/stage-1/module-1.html": module(`<a href="index.html">← Back to Stage</a>`, ""),
		"paths/builder/stage-1/module-2.html": module(`<a href="module-1.html">← Previous</a><button>Complete The Builder Path 🎉</button>`, ""),
	}
	for rel, content := range overrides {
		files[rel] = content
	}
	root := testutils.CreateSite(t, files)

	configPath := filepath.Join(t.TempDir(), "navcheck.yml")
	configYAML := fmt.Sprintf(`site:
  root: %q
check:
  workers: 2
sequences:
  - path: builder
    stage: stage-1
    modules: [module-1.html, module-2.html]
`, root)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))
	return root, configPath
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if v, ok := f.Value.(*validatingValue); ok {
			_ = v.originalSet(f.DefValue)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommandPasses(t *testing.T) {
	_, configPath := writeProject(t, nil)

	out, err := execute(t, "check", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Navigation Check Summary")
	assert.Contains(t, out, "ALL CHECKS PASSED")
}

func TestCheckCommandAlias(t *testing.T) {
	_, configPath := writeProject(t, nil)

	_, err := execute(t, "c", "--config", configPath)
	require.NoError(t, err)
}

func TestCheckCommandFailsWithJSONReport(t *testing.T) {
	_, configPath := writeProject(t, map[string]string{
		"paths/builder/stage-1/module-1.html": module(`<a href="index.html">← Back to Stage</a>`,
			`<a href="module-5.html">ahead</a>`),
	})

	out, err := execute(t, "check", "--config", configPath, "--format", "json")
	require.ErrorIs(t, err, checker.ErrCheckFailed)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.BrokenLinks, 1)
	assert.Equal(t, "paths/builder/stage-1/module-5.html", rep.BrokenLinks[0].ResolvedPath)
	assert.False(t, rep.Summary.Passed)
}

func TestCheckCommandStrict(t *testing.T) {
	_, configPath := writeProject(t, map[string]string{
		"paths/builder/stage-1/module-2.html": module(
			`<a href="/paths/builder/stage-1/module-1.html">← Previous</a><button>Complete The Builder Path 🎉</button>`, ""),
	})

	out, err := execute(t, "check", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "PASSED WITH ADVISORIES")

	_, err = execute(t, "check", "--config", configPath, "--strict")
	require.ErrorIs(t, err, checker.ErrCheckFailed)
}

func TestCheckCommandRootFlagOverridesConfig(t *testing.T) {
	root, _ := writeProject(t, nil)
	configPath := filepath.Join(t.TempDir(), "navcheck.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`site:
  root: /does/not/exist
sequences:
  - path: builder
    stage: stage-1
`), 0o644))

	_, err := execute(t, "check", "--config", configPath)
	require.Error(t, err)

	_, err = execute(t, "check", "--config", configPath, "--root", root)
	require.NoError(t, err)
}

func TestCheckCommandOutputFile(t *testing.T) {
	_, configPath := writeProject(t, nil)
	reportPath := filepath.Join(t.TempDir(), "report.html")

	out, err := execute(t, "check", "--config", configPath, "-f", "html", "-o", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	content, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<html")
}

func TestCheckCommandRejectsBadFlags(t *testing.T) {
	_, configPath := writeProject(t, nil)

	_, err := execute(t, "check", "--config", configPath, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format xml")

	_, err = execute(t, "check", "--config", configPath, "--workers", "-1")
	require.Error(t, err)

	_, err = execute(t, "check", "--config", configPath, "--log-level", "loud")
	require.Error(t, err)
}

func TestCheckCommandMissingConfigFile(t *testing.T) {
	_, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, checker.ErrCheckFailed)
}

func TestConfigCommand(t *testing.T) {
	root, configPath := writeProject(t, nil)

	out, err := execute(t, "config", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "root: "+root)
	assert.Contains(t, out, "stage: stage-1")
	assert.Contains(t, out, "navigation_selector: nav.module-navigation")

	out, err = execute(t, "config", "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Final stage of builder: stage-1")
}

func TestConfigCommandEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NAVCHECK_SITE_PATHS_DIR", "public")
	t.Setenv("NAVCHECK_MARKUP_SOURCE_SELECTOR", "img")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "paths_dir: public")
	assert.Contains(t, out, "source_selector: img\n")
	assert.Contains(t, out, "index_file: index.html")
}

func TestCheckCommandInventory(t *testing.T) {
	_, configPath := writeProject(t, map[string]string{
		"paths/builder/stage-1/module-1.html": module(`<a href="index.html">← Back to Stage</a>`,
			`<a href="https://bitcoin.org/">bitcoin</a><a href="#top">top</a>`),
	})

	out, err := execute(t, "check", "--config", configPath, "--format", "json")
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 1, rep.ReferencesByCategory["external"])
	assert.Equal(t, 1, rep.ReferencesByCategory["anchor"])
	assert.Empty(t, rep.Inventory)

	out, err = execute(t, "check", "--config", configPath, "--format", "json", "--inventory")
	require.NoError(t, err)
	rep = report.Report{}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Inventory, 3)
	assert.Equal(t, "paths/builder/stage-1/index.html", rep.Inventory[0].File)
	assert.Equal(t, "paths/builder/stage-1/module-1.html", rep.Inventory[1].File)
	assert.Len(t, rep.Inventory[1].References, 3)
}

func TestConfigCommandInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "navcheck.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`sequences:
  - path: builder
    stage: stage-1
    modules: [../escape.html]
`), 0o644))

	_, err := execute(t, "config", "validate", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "navcheck ")

	_, err = execute(t, "version", "--format", "xml")
	require.Error(t, err)
}

func TestCheckOnce(t *testing.T) {
	root, _ := writeProject(t, nil)
	cfg := config.NewConfigBuilder().
		WithRoot(root).
		WithSequence("builder", "stage-1", "module-1.html", "module-2.html").
		MustBuild()
	c, err := checker.New(cfg, logging.NewTestLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkOnce(context.Background(), c, &out))
	assert.Contains(t, out.String(), "ALL CHECKS PASSED")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	require.NoError(t, checkOnce(ctx, c, &out))
	assert.Empty(t, out.String())
}

func TestFlagValidators(t *testing.T) {
	for _, format := range config.OutputFormats {
		assert.NoError(t, ValidateFormat(format))
	}
	assert.Error(t, ValidateFormat("table"))

	assert.NoError(t, ValidateWorkers("0"))
	assert.NoError(t, ValidateWorkers("8"))
	assert.Error(t, ValidateWorkers("-2"))
	assert.Error(t, ValidateWorkers("many"))

	assert.NoError(t, ValidateLogLevel("debug"))
	assert.Error(t, ValidateLogLevel("verbose"))
}

func TestAddFlagValidation(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var format string
	flags.StringVar(&format, "format", "", "")
	AddFlagValidation(flags, "format", ValidateFormat)
	AddFlagValidation(flags, "missing", ValidateFormat)

	require.Error(t, flags.Set("format", "pdf"))
	assert.Empty(t, format)

	require.NoError(t, flags.Set("format", "yaml"))
	assert.Equal(t, "yaml", format)
}
