// Package checker runs one validation pass over a site snapshot.
//
// A run scans the content tree, extracts and resolves the references of every
// readable file in parallel, rebuilds the configured stage sequences,
// validates each module's navigation and aggregates everything into a report.
// Parallel results land in per-file slots and are merged in path order, so
// the report does not depend on scheduling.
package checker

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/navcheck/internal/config"
	naverrors "github.com/conneroisu/navcheck/internal/errors"
	"github.com/conneroisu/navcheck/internal/links"
	"github.com/conneroisu/navcheck/internal/logging"
	"github.com/conneroisu/navcheck/internal/markup"
	"github.com/conneroisu/navcheck/internal/navigation"
	"github.com/conneroisu/navcheck/internal/report"
	"github.com/conneroisu/navcheck/internal/scanner"
	"github.com/conneroisu/navcheck/internal/sequence"
)

// ErrCheckFailed is returned alongside the report when the run found
// problems that fail it.
var ErrCheckFailed = errors.New("navigation check failed")

// Checker validates one site root against a configuration.
type Checker struct {
	config    *config.Config
	logger    logging.Logger
	scanner   *scanner.ContentScanner
	extractor *markup.Extractor
	model     *sequence.Model
	labels    *navigation.Taxonomy
}

// New creates a checker for cfg. It fails on an unusable root or invalid
// selectors.
func New(cfg *config.Config, logger logging.Logger) (*Checker, error) {
	contentScanner, err := scanner.NewContentScanner(scanner.Options{
		Root:       cfg.Site.Root,
		Extensions: cfg.Site.Extensions,
		Exclude:    cfg.Site.Exclude,
		Workers:    cfg.Check.Workers,
	}, logger)
	if err != nil {
		return nil, err
	}

	extractor, err := markup.NewExtractor(markup.Selectors{
		Navigation: cfg.Markup.NavigationSelector,
		Breadcrumb: cfg.Markup.BreadcrumbSelector,
		Reference:  cfg.Markup.ReferenceSelector,
		Source:     cfg.Markup.SourceSelector,
		Control:    cfg.Markup.ControlSelector,
	})
	if err != nil {
		return nil, err
	}

	return &Checker{
		config:    cfg,
		logger:    logger.WithComponent("checker"),
		scanner:   contentScanner,
		extractor: extractor,
		model:     sequence.NewModel(cfg),
		labels:    navigation.NewTaxonomy(cfg.Labels),
	}, nil
}

// Scanner returns the content scanner, which callers use to filter watch
// events with the same rules as the scan.
func (c *Checker) Scanner() *scanner.ContentScanner {
	return c.scanner
}

// analysis is the per-file output of the parallel phase.
type analysis struct {
	doc        *markup.Document
	classified []links.ClassifiedReference
	resolved   []links.ResolvedLink
	err        error
}

// Run performs one check. The report is returned whenever the run completed;
// the error is ErrCheckFailed when the report fails, or the fatal error that
// stopped the run.
func (c *Checker) Run(ctx context.Context) (*report.Report, error) {
	perf := logging.StartOperation(c.logger, "check")

	scan, err := c.scanner.Scan(ctx)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	resolver := links.NewResolver(links.Options{
		Root:           c.scanner.Root(),
		DirectoryIndex: c.config.Resolver.DirectoryIndex,
		IndexFile:      c.config.Site.IndexFile,
	})

	results, err := c.analyze(ctx, scan.Files, resolver)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	agg := report.NewAggregator()
	if c.config.Output.Inventory {
		agg.EnableInventory()
	}
	agg.SetFilesScanned(scan.Scanned())

	collector := naverrors.NewErrorCollector()
	navs := make(map[string]*markup.NavigationBlock, len(results))
	readable := make([]string, 0, len(results))
	for i, res := range results {
		path := scan.Files[i].Path
		if res.err != nil {
			collector.AddFileError(path, res.err)
			continue
		}
		readable = append(readable, path)
		navs[path] = res.doc.Navigation
	}

	fileErrors := append(scan.FileErrors, collector.FileErrors()...)
	sort.SliceStable(fileErrors, func(i, j int) bool {
		return fileErrors[i].File < fileErrors[j].File
	})
	agg.AddFileErrors(fileErrors)

	for i, res := range results {
		if res.err == nil {
			agg.AddReferences(scan.Files[i].Path, res.classified)
			agg.AddLinks(res.resolved)
		}
	}

	validator := navigation.NewValidator(resolver, c.labels)
	for _, stage := range c.model.Build(readable) {
		c.logger.Debug(ctx, "Validating stage", "stage", stage.Key(), "modules", len(stage.Modules))
		agg.AddStage(validator.ValidateStage(stage, navs))
	}

	rep := agg.Finish(c.config.Check.Strict)
	perf.End(ctx,
		"files", rep.FilesScanned,
		"links", rep.InternalLinksChecked,
		"violations", len(rep.Violations),
		"passed", rep.Summary.Passed)

	if rep.Failed() {
		return rep, ErrCheckFailed
	}
	return rep, nil
}

func (c *Checker) analyze(ctx context.Context, files []scanner.ContentFile, resolver *links.Resolver) ([]analysis, error) {
	results := make([]analysis, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.scanner.Workers())

	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			file := files[i]
			doc, err := c.extractor.Extract(file.Path, file.RawMarkup)
			if err != nil {
				if !naverrors.IsRecoverable(err) {
					return err
				}
				results[i] = analysis{err: err}
				return nil
			}

			classified := make([]links.ClassifiedReference, 0, len(doc.References))
			resolved := make([]links.ResolvedLink, 0, len(doc.References))
			for _, ref := range doc.References {
				cr := links.ClassifyReference(ref)
				classified = append(classified, cr)
				if link := resolver.ResolveReference(cr); link != nil {
					resolved = append(resolved, *link)
				}
			}
			results[i] = analysis{doc: doc, classified: classified, resolved: resolved}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
