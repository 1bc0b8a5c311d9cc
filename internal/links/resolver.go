package links

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/conneroisu/navcheck/internal/scanner"
)

// Options configures a Resolver.
type Options struct {
	// Root is the site root on disk.
	Root string
	// DirectoryIndex treats a directory reference as a reference to its
	// IndexFile.
	DirectoryIndex bool
	IndexFile      string
}

// Resolution is the outcome of resolving one internal target. Path is the
// cleaned root-relative target, Document the file that would be served for it
// (Path itself, or Path's index document for directory references).
type Resolution struct {
	Path     string `json:"resolvedPath" yaml:"resolvedPath"`
	Document string `json:"document" yaml:"document"`
	Exists   bool   `json:"exists" yaml:"exists"`
}

// ResolvedLink is an internal reference with its resolution.
type ResolvedLink struct {
	ClassifiedReference
	Resolution
}

type statResult struct {
	exists bool
	dir    bool
}

// Resolver maps internal references onto the filesystem. Stat results are
// cached for the lifetime of the Resolver, which is safe for concurrent use.
// A file reached through a symlink that leaves the root counts as missing.
type Resolver struct {
	opts  Options
	root  string
	mu    sync.Mutex
	cache map[string]statResult
}

// NewResolver creates a resolver for opts.
func NewResolver(opts Options) *Resolver {
	if opts.IndexFile == "" {
		opts.IndexFile = "index.html"
	}
	root := opts.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	return &Resolver{
		opts:  opts,
		root:  root,
		cache: make(map[string]statResult),
	}
}

// Resolve resolves target as referenced from sourceFile, both root-relative.
// It returns nil for external, email and anchor targets. A target escaping the
// root, or referenced from a source file that cannot be found, is returned
// unresolved.
func (r *Resolver) Resolve(sourceFile, target string) *Resolution {
	category := Classify(target)
	if !category.IsInternal() {
		return nil
	}

	p := StripFragmentAndQuery(strings.TrimSpace(target))
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	trailingSlash := strings.HasSuffix(p, "/")

	var resolved string
	if category == AbsoluteInternal {
		resolved = path.Clean(strings.TrimLeft(p, "/"))
	} else {
		resolved = path.Join(path.Dir(sourceFile), p)
	}

	res := &Resolution{Path: resolved, Document: resolved}
	if escapesRoot(resolved) {
		return res
	}

	info := r.stat(resolved)
	if r.opts.DirectoryIndex && (info.dir || (trailingSlash && !info.exists)) {
		res.Document = path.Join(resolved, r.opts.IndexFile)
	}

	if source := r.stat(path.Clean(sourceFile)); !source.exists || source.dir {
		return res
	}

	switch {
	case info.exists && !info.dir:
		res.Exists = true
	case info.dir && r.opts.DirectoryIndex:
		index := r.stat(res.Document)
		res.Exists = index.exists && !index.dir
	}

	return res
}

// ResolveReference resolves a classified reference. It returns nil for
// non-internal categories.
func (r *Resolver) ResolveReference(ref ClassifiedReference) *ResolvedLink {
	if !ref.Category.IsInternal() {
		return nil
	}
	res := r.Resolve(ref.SourceFile, ref.Target)
	if res == nil {
		return nil
	}
	return &ResolvedLink{ClassifiedReference: ref, Resolution: *res}
}

// Document returns the served document for an internal target without
// requiring the target to exist. Callers compare it against expected
// sequence neighbours.
func (r *Resolver) Document(sourceFile, target string) (string, bool) {
	res := r.Resolve(sourceFile, target)
	if res == nil {
		return "", false
	}
	return res.Document, true
}

func (r *Resolver) stat(rel string) statResult {
	r.mu.Lock()
	if cached, ok := r.cache[rel]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	// Permission and similar errors count as missing.
	var result statResult
	real, err := filepath.EvalSymlinks(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err == nil && scanner.WithinRoot(r.root, real) {
		if info, err := os.Stat(real); err == nil {
			result = statResult{exists: true, dir: info.IsDir()}
		}
	}

	r.mu.Lock()
	r.cache[rel] = result
	r.mu.Unlock()

	return result
}

func escapesRoot(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}
