//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/navcheck/internal/checker"
	"github.com/conneroisu/navcheck/internal/logging"
	"github.com/conneroisu/navcheck/internal/report"
	"github.com/conneroisu/navcheck/internal/testutils"
	"github.com/conneroisu/navcheck/internal/watcher"
)

// reports records the report of every re-check.
type reports struct {
	mu   sync.Mutex
	last *report.Report
	runs int
}

func (r *reports) record(rep *report.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = rep
	r.runs++
}

func (r *reports) latest() (*report.Report, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.runs
}

func TestIntegration_WatcherChecker_RecheckOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := testutils.CreateSite(t, testutils.BuilderSite())
	logger := logging.NewTestLogger()

	c, err := checker.New(testutils.BuilderConfig(root).MustBuild(), logger)
	require.NoError(t, err)

	initial, err := c.Run(context.Background())
	require.NoError(t, err)
	require.True(t, initial.Summary.Passed)

	fileWatcher, err := watcher.NewFileWatcher(c.Scanner().Root(), 50*time.Millisecond, logger)
	require.NoError(t, err)
	fileWatcher.AddFilter(watcher.ExtensionFilter(".html"))
	fileWatcher.SkipDirs(c.Scanner().IsExcluded)

	seen := &reports{}
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		rep, err := c.Run(ctx)
		if rep == nil {
			return err
		}
		seen.record(rep)
		return nil
	})
	require.NoError(t, fileWatcher.AddRecursive())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fileWatcher.Start(ctx))
	defer fileWatcher.Stop()

	// Break a link
	testutils.WriteFiles(t, root, map[string]string{
		"paths/builder/stage-1/module-2.html": testutils.ModulePage(
			testutils.NavBlock(`<a href="module-1.html">← Previous</a><button>Continue</button>`),
			`<a href="module-5.html">skip ahead</a>`),
	})

	require.Eventually(t, func() bool {
		rep, _ := seen.latest()
		return rep != nil && len(rep.BrokenLinks) == 1
	}, 5*time.Second, 25*time.Millisecond)

	rep, _ := seen.latest()
	assert.Equal(t, "paths/builder/stage-1/module-5.html", rep.BrokenLinks[0].ResolvedPath)

	// Adding the missing module fixes it
	testutils.WriteFiles(t, root, map[string]string{
		filepath.ToSlash(filepath.Join("paths", "builder", "stage-1", "module-5.html")): "<html><body>later</body></html>",
	})

	require.Eventually(t, func() bool {
		rep, _ := seen.latest()
		return rep != nil && rep.Summary.Passed
	}, 5*time.Second, 25*time.Millisecond)

	_, runs := seen.latest()
	assert.GreaterOrEqual(t, runs, 2)

	require.NoError(t, fileWatcher.Stop())
}
