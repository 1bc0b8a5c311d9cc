// Package links classifies extracted references and resolves internal ones
// to files under the site root.
package links

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/conneroisu/navcheck/internal/markup"
)

// Category is the kind of target a reference points at.
type Category int

const (
	External Category = iota
	Anchor
	Email
	AbsoluteInternal
	RelativeInternal
)

var categoryNames = map[Category]string{
	External:         "external",
	Anchor:           "anchor",
	Email:            "email",
	AbsoluteInternal: "absolute-internal",
	RelativeInternal: "relative-internal",
}

// String returns the string representation of the Category
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(name), nil
}

// IsInternal reports whether references of this category resolve to files.
func (c Category) IsInternal() bool {
	return c == AbsoluteInternal || c == RelativeInternal
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Classify categorizes a reference target. Scheme checks run on the raw
// target so a query string cannot disguise an external or email link; the
// anchor and path checks run on the target with fragment and query removed.
func Classify(target string) Category {
	t := strings.TrimSpace(target)
	lower := strings.ToLower(t)

	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return External
	case strings.HasPrefix(lower, "mailto:"):
		return Email
	case strings.HasPrefix(t, "//"), schemePattern.MatchString(t):
		// protocol-relative, tel:, javascript:, data: ...
		return External
	}

	stripped := StripFragmentAndQuery(t)
	switch {
	case strings.HasPrefix(t, "#"), stripped == "":
		return Anchor
	case strings.HasPrefix(stripped, "/"):
		return AbsoluteInternal
	default:
		return RelativeInternal
	}
}

// StripFragmentAndQuery cuts target at its first '#' or '?'.
func StripFragmentAndQuery(target string) string {
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		return target[:i]
	}
	return target
}

// ClassifiedReference is a reference with its category.
type ClassifiedReference struct {
	markup.Reference
	Category Category `json:"category" yaml:"category"`
}

// ClassifyReference wraps Classify for an extracted reference.
func ClassifyReference(ref markup.Reference) ClassifiedReference {
	return ClassifiedReference{Reference: ref, Category: Classify(ref.Target)}
}
