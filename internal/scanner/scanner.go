// Package scanner discovers and reads the content files of a site snapshot.
//
// The scanner walks the site root, skipping excluded directories and files
// without a content extension, then reads the discovered files concurrently
// with a bounded errgroup. Every file is reported by its root-relative slash
// path and results are returned in path order regardless of completion order.
// Directory symlinks are never descended and file symlinks are only followed
// when their real path stays inside the root. Unreadable files and files that
// are not valid UTF-8 are recorded as file errors instead of aborting the scan.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
	"github.com/conneroisu/navcheck/internal/logging"
)

// ContentFile is one readable content page.
type ContentFile struct {
	// Path is root-relative and slash separated.
	Path      string
	RawMarkup string
}

// Options configures a ContentScanner.
type Options struct {
	Root       string
	Extensions []string
	// Exclude holds directory name globs that are never descended.
	Exclude []string
	// Workers bounds concurrent reads. Zero picks NumCPU capped at 8.
	Workers int
}

// Result is the outcome of one scan.
type Result struct {
	// Files holds the readable files sorted by path.
	Files []ContentFile
	// FileErrors holds the unreadable files sorted by path.
	FileErrors []naverrors.FileError
}

// Scanned returns the number of content files found, readable or not.
func (r *Result) Scanned() int {
	return len(r.Files) + len(r.FileErrors)
}

// ContentScanner finds and reads content files under a root directory.
type ContentScanner struct {
	root       string
	extensions map[string]bool
	exclude    []string
	workers    int
	logger     logging.Logger
}

// NewContentScanner validates the root and creates a scanner.
func NewContentScanner(opts Options, logger logging.Logger) (*ContentScanner, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, naverrors.NewIOError(naverrors.ErrCodeInvalidPath, "invalid site root", err).WithFile(opts.Root)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, naverrors.WrapIO(err, opts.Root)
	}
	if !info.IsDir() {
		return nil, naverrors.NewValidationError(naverrors.ErrCodeInvalidPath, "site root is not a directory").
			WithFile(opts.Root)
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}

	return &ContentScanner{
		root:       root,
		extensions: extensions,
		exclude:    opts.Exclude,
		workers:    workers,
		logger:     logger.WithComponent("scanner"),
	}, nil
}

// Root returns the absolute, symlink-resolved root.
func (s *ContentScanner) Root() string {
	return s.root
}

// Workers returns the concurrency bound used for reads.
func (s *ContentScanner) Workers() int {
	return s.workers
}

// Scan walks the root and reads every content file.
func (s *ContentScanner) Scan(ctx context.Context) (*Result, error) {
	collector := naverrors.NewErrorCollector()

	paths, err := s.discover(ctx, collector)
	if err != nil {
		return nil, err
	}

	files := make([]*ContentFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			file, err := s.read(rel)
			if err != nil {
				if !naverrors.IsRecoverable(err) {
					return err
				}
				collector.AddFileError(rel, err)
				return nil
			}
			files[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Files:      make([]ContentFile, 0, len(paths)),
		FileErrors: collector.FileErrors(),
	}
	for _, f := range files {
		if f != nil {
			result.Files = append(result.Files, *f)
		}
	}

	s.logger.Debug(ctx, "Scan complete",
		"files", len(result.Files),
		"file_errors", len(result.FileErrors))

	return result, nil
}

// ContainsPath reports whether the absolute path abs lies under the root.
func (s *ContentScanner) ContainsPath(abs string) bool {
	return WithinRoot(s.root, abs)
}

// WithinRoot reports whether the absolute path abs is root or lies below it.
// Both paths are compared lexically, so callers resolve symlinks first.
func WithinRoot(root, abs string) bool {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsContentFile reports whether name has a content extension.
func (s *ContentScanner) IsContentFile(name string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

// IsExcluded reports whether a directory named name is excluded.
func (s *ContentScanner) IsExcluded(name string) bool {
	for _, pattern := range s.exclude {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *ContentScanner) discover(ctx context.Context, collector *naverrors.ErrorCollector) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel := s.relative(path)
		if err != nil {
			if path == s.root {
				return naverrors.WrapIO(err, ".")
			}
			collector.AddFileError(rel, naverrors.WrapIO(err, rel))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			if path != s.root && s.IsExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			if s.followSymlink(ctx, path, rel) && s.IsContentFile(d.Name()) {
				paths = append(paths, rel)
			}
			return nil
		case d.Type().IsRegular() && s.IsContentFile(d.Name()):
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// followSymlink reports whether a symlinked entry is a regular file inside
// the root.
func (s *ContentScanner) followSymlink(ctx context.Context, path, rel string) bool {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		s.logger.Warn(ctx, err, "Skipping dangling symlink", "path", rel)
		return false
	}
	if !s.ContainsPath(target) {
		s.logger.Warn(ctx, nil, "Skipping symlink that leaves the site root", "path", rel)
		return false
	}
	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}

func (s *ContentScanner) read(rel string) (*ContentFile, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, naverrors.WrapIO(err, rel)
	}
	if !utf8.Valid(content) {
		return nil, naverrors.NewIOError(naverrors.ErrCodeInvalidEncoding, "invalid UTF-8", nil).WithFile(rel)
	}
	return &ContentFile{Path: rel, RawMarkup: string(content)}, nil
}

func (s *ContentScanner) relative(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
