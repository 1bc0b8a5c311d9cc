package markup

import "fmt"

// Region identifies the part of a page a reference was found in.
type Region int

const (
	RegionBody Region = iota
	RegionNavigation
	RegionBreadcrumb
)

// String returns the string representation of the Region
func (r Region) String() string {
	switch r {
	case RegionBody:
		return "body"
	case RegionNavigation:
		return "navigation"
	case RegionBreadcrumb:
		return "breadcrumb"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Region) MarshalText() ([]byte, error) {
	if r < RegionBody || r > RegionBreadcrumb {
		return nil, fmt.Errorf("unknown region %d", int(r))
	}
	return []byte(r.String()), nil
}

// Attributes a reference target can come from.
const (
	AttributeHref = "href"
	AttributeSrc  = "src"
)

// Reference is one outbound href or src found in a content file.
type Reference struct {
	SourceFile string `json:"sourceFile" yaml:"sourceFile"`
	Target     string `json:"target" yaml:"target"`
	Label      string `json:"label" yaml:"label"`
	Region     Region `json:"region" yaml:"region"`
	Attribute  string `json:"attribute" yaml:"attribute"`
}

// NavigationBlock is the content of a page's navigation region: its
// references and the labels of its interactive controls. A page without a
// navigation region has a nil block.
type NavigationBlock struct {
	Owner    string
	Links    []Reference
	Controls []string
}

// Document is the extraction result for one content file.
type Document struct {
	Path string
	// References holds every reference in document order, each tagged with
	// exactly one region.
	References []Reference
	// Navigation is nil when the page has no navigation region.
	Navigation *NavigationBlock
	// HasBreadcrumb reports whether a breadcrumb region was found.
	HasBreadcrumb bool
}

// ReferencesIn returns the references tagged with region, in document order.
func (d *Document) ReferencesIn(region Region) []Reference {
	var refs []Reference
	for _, ref := range d.References {
		if ref.Region == region {
			refs = append(refs, ref)
		}
	}
	return refs
}
