package navigation

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/navcheck/internal/config"
)

// LabelClass is a completion class a control label can belong to.
type LabelClass int

const (
	ClassContinue LabelClass = iota
	ClassCompleteStage
	ClassFinishPath
)

// String returns the string representation of the LabelClass
func (c LabelClass) String() string {
	switch c {
	case ClassContinue:
		return "continue"
	case ClassCompleteStage:
		return "complete-stage"
	case ClassFinishPath:
		return "finish-path"
	default:
		return "unknown"
	}
}

// Taxonomy maps control labels onto completion classes. A label belongs to a
// class when its normalised form contains one of the class tokens; a label
// may belong to several classes.
type Taxonomy struct {
	tokens map[LabelClass][]string
}

// NewTaxonomy builds a taxonomy from the configured token sets.
func NewTaxonomy(labels config.LabelsConfig) *Taxonomy {
	t := &Taxonomy{tokens: make(map[LabelClass][]string, 3)}
	t.add(ClassContinue, labels.Continue)
	t.add(ClassCompleteStage, labels.CompleteStage)
	t.add(ClassFinishPath, labels.FinishPath)
	return t
}

func (t *Taxonomy) add(class LabelClass, tokens []string) {
	for _, token := range tokens {
		if norm := NormalizeLabel(token); norm != "" {
			t.tokens[class] = append(t.tokens[class], norm)
		}
	}
}

// Matches reports whether label belongs to class.
func (t *Taxonomy) Matches(label string, class LabelClass) bool {
	norm := NormalizeLabel(label)
	if norm == "" {
		return false
	}
	for _, token := range t.tokens[class] {
		if strings.Contains(norm, token) {
			return true
		}
	}
	return false
}

// Any reports whether one of labels belongs to class.
func (t *Taxonomy) Any(labels []string, class LabelClass) bool {
	for _, label := range labels {
		if t.Matches(label, class) {
			return true
		}
	}
	return false
}

var folder = cases.Fold()

// NormalizeLabel collapses whitespace and case-folds s.
func NormalizeLabel(s string) string {
	return folder.String(strings.Join(strings.Fields(s), " "))
}
