// Package report aggregates link resolution and navigation results into a
// single deterministic report and renders it.
//
// The aggregator is fed in a fixed order by the checker: file errors, then the
// classified references and resolved links of every file in path order, then
// the stage results in configuration order. The report carries no timestamps and no absolute paths,
// so rendering an unchanged tree twice yields identical bytes.
package report

import (
	"fmt"
	"sort"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
	"github.com/conneroisu/navcheck/internal/links"
	"github.com/conneroisu/navcheck/internal/navigation"
)

// BrokenLink is an internal reference whose target does not exist.
type BrokenLink struct {
	File         string `json:"file" yaml:"file"`
	Target       string `json:"target" yaml:"target"`
	ResolvedPath string `json:"resolvedPath" yaml:"resolvedPath"`
}

// MissingNavigation names a sequenced module without a navigation region.
type MissingNavigation struct {
	File string `json:"file" yaml:"file"`
}

// SequencingViolation is a navigation rule violation.
type SequencingViolation struct {
	File    string          `json:"file" yaml:"file"`
	Kind    navigation.Kind `json:"kind" yaml:"kind"`
	Message string          `json:"message" yaml:"message"`
}

// InventoryEntry is one reference of a file in the inventory.
type InventoryEntry struct {
	Target    string `json:"target" yaml:"target"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	Category  string `json:"category" yaml:"category"`
	Region    string `json:"region" yaml:"region"`
	Attribute string `json:"attribute" yaml:"attribute"`
}

// FileInventory lists the references of one file in document order.
type FileInventory struct {
	File       string           `json:"file" yaml:"file"`
	References []InventoryEntry `json:"references" yaml:"references"`
}

// Summary holds the headline counts. SequencingViolations excludes
// advisories, which are counted separately.
type Summary struct {
	ModulesChecked       int  `json:"modulesChecked" yaml:"modulesChecked"`
	StagesChecked        int  `json:"stagesChecked" yaml:"stagesChecked"`
	BrokenLinks          int  `json:"brokenLinks" yaml:"brokenLinks"`
	MissingNavigation    int  `json:"missingNavigation" yaml:"missingNavigation"`
	SequencingViolations int  `json:"sequencingViolations" yaml:"sequencingViolations"`
	Advisories           int  `json:"advisories" yaml:"advisories"`
	FileErrors           int  `json:"fileErrors" yaml:"fileErrors"`
	Strict               bool `json:"strict" yaml:"strict"`
	Passed               bool `json:"passed" yaml:"passed"`
}

// Report is the outcome of one check run.
type Report struct {
	FilesScanned         int                                  `json:"filesScanned" yaml:"filesScanned"`
	InternalLinksChecked int                                  `json:"internalLinksChecked" yaml:"internalLinksChecked"`
	ReferencesByCategory map[string]int                       `json:"referencesByCategory" yaml:"referencesByCategory"`
	BrokenLinks          []BrokenLink                         `json:"brokenLinks" yaml:"brokenLinks"`
	MissingNavigation    []MissingNavigation                  `json:"missingNavigation" yaml:"missingNavigation"`
	SequencingViolations []SequencingViolation                `json:"sequencingViolations" yaml:"sequencingViolations"`
	ButtonLabelVariants  []string                             `json:"buttonLabelVariants" yaml:"buttonLabelVariants"`
	LinkTypeByStage      map[string]navigation.LinkTypeCounts `json:"linkTypeByStage" yaml:"linkTypeByStage"`
	FileErrors           []naverrors.FileError                `json:"fileErrors" yaml:"fileErrors"`
	Violations           []navigation.Violation               `json:"violations" yaml:"violations"`
	Inventory            []FileInventory                      `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Summary              Summary                              `json:"summary" yaml:"summary"`
}

// Failed reports whether the run failed. Advisories fail only strict runs.
func (r *Report) Failed() bool {
	return !r.Summary.Passed
}

// Aggregator accumulates results into a Report. It is not safe for
// concurrent use; the checker feeds it from a single goroutine in a fixed
// order.
type Aggregator struct {
	report    *Report
	labels    map[string]bool
	modules   int
	inventory bool
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	byCategory := make(map[string]int)
	for _, category := range []links.Category{
		links.External, links.Anchor, links.Email, links.AbsoluteInternal, links.RelativeInternal,
	} {
		byCategory[category.String()] = 0
	}

	return &Aggregator{
		report: &Report{
			ReferencesByCategory: byCategory,
			BrokenLinks:          make([]BrokenLink, 0),
			MissingNavigation:    make([]MissingNavigation, 0),
			SequencingViolations: make([]SequencingViolation, 0),
			ButtonLabelVariants:  make([]string, 0),
			LinkTypeByStage:      make(map[string]navigation.LinkTypeCounts),
			FileErrors:           make([]naverrors.FileError, 0),
			Violations:           make([]navigation.Violation, 0),
		},
		labels: make(map[string]bool),
	}
}

// SetFilesScanned records the number of content files found by the scan.
func (a *Aggregator) SetFilesScanned(n int) {
	a.report.FilesScanned = n
}

// AddFileErrors records unreadable files.
func (a *Aggregator) AddFileErrors(fileErrors []naverrors.FileError) {
	a.report.FileErrors = append(a.report.FileErrors, fileErrors...)
}

// EnableInventory makes the report list every reference of every file.
func (a *Aggregator) EnableInventory() {
	a.inventory = true
}

// AddReferences counts the classified references of one file by category
// and, with the inventory enabled, lists them.
func (a *Aggregator) AddReferences(file string, refs []links.ClassifiedReference) {
	for _, ref := range refs {
		a.report.ReferencesByCategory[ref.Category.String()]++
	}
	if !a.inventory {
		return
	}

	entries := make([]InventoryEntry, 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, InventoryEntry{
			Target:    ref.Target,
			Label:     ref.Label,
			Category:  ref.Category.String(),
			Region:    ref.Region.String(),
			Attribute: ref.Attribute,
		})
	}
	a.report.Inventory = append(a.report.Inventory, FileInventory{File: file, References: entries})
}

// AddLinks records the resolved internal links of one file in document
// order. Every unresolved link becomes a BrokenLink violation.
func (a *Aggregator) AddLinks(resolved []links.ResolvedLink) {
	for _, link := range resolved {
		a.report.InternalLinksChecked++
		if link.Exists {
			continue
		}

		a.report.BrokenLinks = append(a.report.BrokenLinks, BrokenLink{
			File:         link.SourceFile,
			Target:       link.Target,
			ResolvedPath: link.Path,
		})
		a.report.Violations = append(a.report.Violations, navigation.Violation{
			File:    link.SourceFile,
			Kind:    navigation.KindBrokenLink,
			Message: fmt.Sprintf("link target %s does not exist", link.Path),
			Target:  link.Target,
		})
	}
}

// AddStage records the result of one validated stage.
func (a *Aggregator) AddStage(result *navigation.StageResult) {
	a.modules += result.Modules
	a.report.LinkTypeByStage[result.Key] = result.LinkTypes

	for _, label := range result.Labels {
		a.labels[label] = true
	}

	for _, v := range result.Violations {
		a.report.Violations = append(a.report.Violations, v)
		switch {
		case v.Kind == navigation.KindMissingNavigation:
			a.report.MissingNavigation = append(a.report.MissingNavigation, MissingNavigation{File: v.File})
		case v.Kind.Sequencing():
			a.report.SequencingViolations = append(a.report.SequencingViolations, SequencingViolation{
				File:    v.File,
				Kind:    v.Kind,
				Message: v.Message,
			})
		}
	}
}

// Finish computes the summary and returns the report. strict makes
// advisories fail the run.
func (a *Aggregator) Finish(strict bool) *Report {
	r := a.report

	variants := make([]string, 0, len(a.labels))
	for label := range a.labels {
		variants = append(variants, label)
	}
	sort.Strings(variants)
	r.ButtonLabelVariants = variants

	summary := Summary{
		ModulesChecked:    a.modules,
		StagesChecked:     len(r.LinkTypeByStage),
		BrokenLinks:       len(r.BrokenLinks),
		MissingNavigation: len(r.MissingNavigation),
		FileErrors:        len(r.FileErrors),
		Strict:            strict,
	}
	for _, v := range r.SequencingViolations {
		if v.Kind.Advisory() {
			summary.Advisories++
		} else {
			summary.SequencingViolations++
		}
	}

	summary.Passed = summary.BrokenLinks == 0 &&
		summary.MissingNavigation == 0 &&
		summary.SequencingViolations == 0 &&
		summary.FileErrors == 0 &&
		(!strict || summary.Advisories == 0)

	r.Summary = summary
	return r
}
