// Package testutils holds site fixtures shared by package tests.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/navcheck/internal/config"
)

// CreateSite writes files, keyed by root-relative slash path, into a fresh
// temporary directory and returns its path.
func CreateSite(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// WriteFiles writes files under root, creating parent directories.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// NavBlock wraps inner in a module navigation region.
func NavBlock(inner string) string {
	return `<nav class="module-navigation">` + inner + `</nav>`
}

// ModulePage returns a module page with a breadcrumb, a main body and nav
// after it.
func ModulePage(nav string, body ...string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>module</title></head>
<body>
<div class="breadcrumb"><a href="/">Home</a> / <a href="/paths/builder/">Builder</a></div>
<main>%s</main>
%s
</body></html>`, strings.Join(body, "\n"), nav)
}

// BuilderSite returns a correct two-stage "builder" path: three modules in
// stage-1 and two in stage-2, which is the final stage.
func BuilderSite() map[string]string {
	return map[string]string{
		"index.html":                       "<html><body>home</body></html>",
		"paths/builder/index.html":         "<html><body>builder</body></html>",
		"paths/builder/stage-1/index.html": `<html><body><a href="module-1.html">Start</a></body></html>`,
		"paths/builder/stage-1/module-1.html": ModulePage(NavBlock(`<a href="./">← Back to Stage</a>`),
			`<a href="https://bitcoin.org">whitepaper</a>`),
		"paths/builder/stage-1/module-2.html": ModulePage(NavBlock(`<a href="module-1.html">← Previous</a><button>Continue →</button>`)),
		"paths/builder/stage-1/module-3.html": ModulePage(NavBlock(`<a href="module-2.html">← Previous</a><button>Complete Stage 1</button>`)),
		"paths/builder/stage-2/index.html":    "<html><body>stage 2</body></html>",
		"paths/builder/stage-2/module-1.html": ModulePage(NavBlock(`<a href="index.html">← Back to Stage</a>`)),
		"paths/builder/stage-2/module-2.html": ModulePage(NavBlock(`<a href="module-1.html">← Previous</a><button>Complete The Builder Path! 🎉</button>`)),
	}
}

// BuilderConfig returns a config builder naming every module of BuilderSite.
func BuilderConfig(root string) *config.ConfigBuilder {
	return config.NewConfigBuilder().
		WithRoot(root).
		WithWorkers(4).
		WithSequence("builder", "stage-1", "module-1.html", "module-2.html", "module-3.html").
		WithSequence("builder", "stage-2", "module-1.html", "module-2.html")
}
