package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/navcheck/internal/logging"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func newWatcher(t *testing.T, root string) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(root, 20*time.Millisecond, logging.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Stop() })
	return fw
}

func TestNewFileWatcher(t *testing.T) {
	fw := newWatcher(t, t.TempDir())

	assert.NotNil(t, fw.watcher)
	assert.NotNil(t, fw.debouncer)
	assert.Empty(t, fw.filters)
	assert.Empty(t, fw.handlers)
	assert.True(t, filepath.IsAbs(fw.root))
}

func TestValidatePath(t *testing.T) {
	root := t.TempDir()
	fw := newWatcher(t, root)

	rel, err := fw.validatePath(filepath.Join(fw.root, "paths", "builder", "module-1.html"))
	require.NoError(t, err)
	assert.Equal(t, "paths/builder/module-1.html", rel)

	_, err = fw.validatePath(filepath.Dir(fw.root))
	assert.Error(t, err)

	_, err = fw.validatePath(filepath.Join(fw.root, "..", "sibling", "x.html"))
	assert.Error(t, err)
}

func TestFilters(t *testing.T) {
	html := ExtensionFilter(".html", ".HTM")

	assert.True(t, html("paths/a/module-1.html"))
	assert.True(t, html("paths/a/MODULE-1.HTML"))
	assert.True(t, html("legacy.htm"))
	assert.False(t, html("notes.md"))
	assert.False(t, html("paths/a"))

	assert.True(t, NoHiddenFilter("paths/a/module-1.html"))
	assert.False(t, NoHiddenFilter("paths/a/.module-1.html.swp"))
}

func TestDebouncerFlushDeduplicatesAndSorts(t *testing.T) {
	d := &Debouncer{
		delay:  10 * time.Millisecond,
		events: make(chan ChangeEvent, 10),
		output: make(chan []ChangeEvent, 1),
	}
	defer d.stop()

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.html"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.html"})
	d.addEvent(ChangeEvent{Type: EventTypeDeleted, Path: "b.html"})

	select {
	case batch := <-d.output:
		assert.Equal(t, []ChangeEvent{
			{Type: EventTypeModified, Path: "a.html"},
			{Type: EventTypeDeleted, Path: "b.html"},
		}, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	d.flush()
	assert.Empty(t, d.output)
}

// collector gathers debounced batches from a running watcher.
type collector struct {
	mu    sync.Mutex
	paths map[string]EventType
}

func (c *collector) handle(_ context.Context, events []ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		c.paths[e.Path] = e.Type
	}
	return nil
}

func (c *collector) seen(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.paths[path]
	return ok
}

func TestFileWatcherDeliversFilteredEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "paths", "builder"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	fw, err := NewFileWatcher(root, 20*time.Millisecond, logging.NewTestLogger())
	require.NoError(t, err)
	fw.AddFilter(ExtensionFilter(".html"))
	fw.AddFilter(NoHiddenFilter)
	fw.SkipDirs(func(name string) bool { return name == "node_modules" })

	c := &collector{paths: make(map[string]EventType)}
	fw.AddHandler(c.handle)
	require.NoError(t, fw.AddRecursive())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	write := func(rel string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("<html></html>"), 0o644))
	}

	write("paths/builder/module-1.html")
	write("paths/builder/notes.md")
	write("node_modules/pkg.html")
	assert.Eventually(t, func() bool { return c.seen("paths/builder/module-1.html") },
		3*time.Second, 20*time.Millisecond)

	// a directory created after start is picked up
	assert.Eventually(t, func() bool {
		write("paths/curious/module-1.html")
		return c.seen("paths/curious/module-1.html")
	}, 3*time.Second, 50*time.Millisecond)

	assert.False(t, c.seen("paths/builder/notes.md"))
	assert.False(t, c.seen("node_modules/pkg.html"))

	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}

func TestFileWatcherStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	fw, err := NewFileWatcher(t.TempDir(), 20*time.Millisecond, logging.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, fw.AddRecursive())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, fw.Start(ctx))
	cancel()

	require.NoError(t, fw.Stop())
}
