// Package navigation checks module navigation regions against their
// position in the stage sequence.
//
// Each module is validated on its own from its role: the first module links
// back to the stage index, middle modules link to their predecessor and offer
// a continue control, the last module of a stage offers a stage completion
// control and the last module of a path offers a path finish control. No
// navigation link may point at the next module. After every module of a stage
// has been validated, a second pass aggregates link types and control labels
// across the stage.
package navigation

import (
	"fmt"

	"github.com/conneroisu/navcheck/internal/links"
	"github.com/conneroisu/navcheck/internal/markup"
	"github.com/conneroisu/navcheck/internal/sequence"
)

// DocumentResolver maps an internal target to the document it is served
// from. *links.Resolver implements it.
type DocumentResolver interface {
	Document(sourceFile, target string) (string, bool)
}

// LinkTypeCounts counts the internal navigation links of a stage by kind.
type LinkTypeCounts struct {
	Absolute int `json:"absoluteCount" yaml:"absoluteCount"`
	Relative int `json:"relativeCount" yaml:"relativeCount"`
}

// Mixed reports whether both kinds occur.
func (c LinkTypeCounts) Mixed() bool {
	return c.Absolute > 0 && c.Relative > 0
}

// StageResult is the outcome of validating one stage.
type StageResult struct {
	Key string
	// Violations holds the per-module violations in module order, followed by
	// the stage consistency advisory if any.
	Violations []Violation
	LinkTypes  LinkTypeCounts
	// Labels holds the distinct control labels in first-seen order.
	Labels  []string
	Modules int
}

// Validator applies the positional navigation rules.
type Validator struct {
	resolver DocumentResolver
	labels   *Taxonomy
}

// NewValidator creates a validator.
func NewValidator(resolver DocumentResolver, labels *Taxonomy) *Validator {
	return &Validator{resolver: resolver, labels: labels}
}

type navLink struct {
	ref      links.ClassifiedReference
	document string
}

// ValidateStage validates every module of stage and runs the consistency
// pass. navs maps module files to their navigation blocks; a missing entry is
// treated as an absent navigation region.
func (v *Validator) ValidateStage(stage *sequence.Stage, navs map[string]*markup.NavigationBlock) *StageResult {
	result := &StageResult{
		Key:        stage.Key(),
		Violations: make([]Violation, 0),
		Labels:     make([]string, 0),
		Modules:    len(stage.Modules),
	}
	seen := make(map[string]bool)

	for _, pos := range stage.Modules {
		nav := navs[pos.File]
		result.Violations = append(result.Violations, v.ValidateModule(stage, pos, nav)...)
		if nav == nil {
			continue
		}

		for _, ref := range nav.Links {
			switch links.Classify(ref.Target) {
			case links.AbsoluteInternal:
				result.LinkTypes.Absolute++
			case links.RelativeInternal:
				result.LinkTypes.Relative++
			}
		}
		for _, label := range nav.Controls {
			if !seen[label] {
				seen[label] = true
				result.Labels = append(result.Labels, label)
			}
		}
	}

	if result.LinkTypes.Mixed() {
		result.Violations = append(result.Violations, Violation{
			File: stage.Dir,
			Kind: KindInconsistentLinkType,
			Message: fmt.Sprintf("stage %s mixes %d absolute and %d relative navigation links",
				stage.Key(), result.LinkTypes.Absolute, result.LinkTypes.Relative),
		})
	}

	return result
}

// ValidateModule applies the rules for pos's role to nav.
func (v *Validator) ValidateModule(stage *sequence.Stage, pos sequence.ModulePosition, nav *markup.NavigationBlock) []Violation {
	file := pos.File
	if nav == nil {
		return []Violation{{
			File:    file,
			Kind:    KindMissingNavigation,
			Message: "module has no navigation region",
		}}
	}

	var out []Violation
	internal := v.internalLinks(file, nav.Links)
	next, hasNext := stage.Next(pos.Index)

	if len(nav.Links) == 0 {
		out = append(out, Violation{
			File:    file,
			Kind:    KindEmptyNavigation,
			Message: "navigation region has no links",
		})
	} else {
		switch {
		case pos.Role == sequence.RoleFirst:
			out = append(out, v.checkIndexLink(stage, file, internal, next, hasNext)...)
		case pos.Role == sequence.RoleMiddle, !pos.FinalStage:
			out = append(out, v.checkPreviousLink(stage, pos, internal)...)
		}

		if hasNext {
			for _, link := range internal {
				if link.document == next.File {
					out = append(out, Violation{
						File:    file,
						Kind:    KindForwardInBackwardSlot,
						Message: fmt.Sprintf("navigation links forward to next module %s", next.FileName),
						Target:  link.ref.Target,
					})
				}
			}
		}
	}

	switch {
	case pos.Role == sequence.RoleMiddle:
		if !v.labels.Any(nav.Controls, ClassContinue) {
			out = append(out, Violation{
				File:    file,
				Kind:    KindMissingContinueControl,
				Message: "middle module has no continue control",
			})
		}
	case pos.Role == sequence.RoleLast && !pos.FinalStage:
		if !v.labels.Any(nav.Controls, ClassCompleteStage) {
			out = append(out, Violation{
				File:    file,
				Kind:    KindMissingStageCompletionControl,
				Message: "last module of stage has no stage completion control",
			})
		}
	case pos.Role == sequence.RoleLast:
		if !v.labels.Any(nav.Controls, ClassFinishPath) {
			out = append(out, Violation{
				File:    file,
				Kind:    KindMissingPathFinishControl,
				Message: "last module of path has no path finish control",
			})
		}
	}

	return out
}

func (v *Validator) internalLinks(file string, refs []markup.Reference) []navLink {
	var out []navLink
	for _, ref := range refs {
		classified := links.ClassifyReference(ref)
		if !classified.Category.IsInternal() {
			continue
		}
		document, _ := v.resolver.Document(file, ref.Target)
		out = append(out, navLink{ref: classified, document: document})
	}
	return out
}

func (v *Validator) checkIndexLink(stage *sequence.Stage, file string, internal []navLink, next sequence.ModulePosition, hasNext bool) []Violation {
	count := 0
	forward := false
	for _, link := range internal {
		switch {
		case link.document == stage.IndexDocument:
			count++
		case hasNext && link.document == next.File:
			forward = true
		}
	}

	switch {
	case count == 1:
		return nil
	case count > 1:
		return []Violation{{
			File:    file,
			Kind:    KindWrongIndexTarget,
			Message: fmt.Sprintf("first module links to stage index %d times", count),
		}}
	case forward:
		return []Violation{{
			File:    file,
			Kind:    KindWrongIndexTarget,
			Message: "first-module link points forward instead of to index",
		}}
	default:
		return []Violation{{
			File:    file,
			Kind:    KindWrongIndexTarget,
			Message: "first module should link to stage index",
		}}
	}
}

func (v *Validator) checkPreviousLink(stage *sequence.Stage, pos sequence.ModulePosition, internal []navLink) []Violation {
	prev, ok := stage.Previous(pos.Index)
	if !ok {
		return nil
	}
	for _, link := range internal {
		if link.document == prev.File {
			return nil
		}
	}
	return []Violation{{
		File:    pos.File,
		Kind:    KindWrongPreviousTarget,
		Message: fmt.Sprintf("expected a link to previous module %s", prev.FileName),
	}}
}
