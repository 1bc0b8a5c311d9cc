// Package markup extracts outbound references and navigation controls from
// content pages.
//
// Pages are parsed into a document tree with golang.org/x/net/html and every
// lookup is a CSS selector query compiled with cascadia: one query collects
// the href-bearing elements, another the src-bearing ones (images, scripts,
// frames), and single-match queries locate the navigation and breadcrumb
// regions. References are emitted in document order and each is tagged with
// exactly one region. Embedded resources are always tagged body since they
// never navigate. Interactive controls without a target (buttons, role=button
// elements, anchors lacking href) inside the navigation region are captured as
// plain labels.
package markup

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
)

// Selectors configures the structural queries used by the Extractor.
type Selectors struct {
	Navigation string
	Breadcrumb string
	Reference  string
	Source     string
	Control    string
}

// Extractor turns raw markup into a Document. It holds only compiled
// selectors and is safe for concurrent use.
type Extractor struct {
	navigation cascadia.Selector
	breadcrumb cascadia.Selector
	reference  cascadia.Selector
	source     cascadia.Selector
	control    cascadia.Selector
}

// NewExtractor compiles the selectors.
func NewExtractor(sel Selectors) (*Extractor, error) {
	compile := func(name, selector string) (cascadia.Selector, error) {
		compiled, err := cascadia.Compile(selector)
		if err != nil {
			cfgErr := naverrors.NewConfigError(naverrors.ErrCodeInvalidSelector, "invalid "+name+" selector "+selector)
			cfgErr.Cause = err
			return nil, cfgErr
		}
		return compiled, nil
	}

	var (
		e   Extractor
		err error
	)
	if e.navigation, err = compile("navigation", sel.Navigation); err != nil {
		return nil, err
	}
	if e.breadcrumb, err = compile("breadcrumb", sel.Breadcrumb); err != nil {
		return nil, err
	}
	if e.reference, err = compile("reference", sel.Reference); err != nil {
		return nil, err
	}
	if e.source, err = compile("source", sel.Source); err != nil {
		return nil, err
	}
	if e.control, err = compile("control", sel.Control); err != nil {
		return nil, err
	}

	return &e, nil
}

// Extract parses rawMarkup and returns its references and navigation block.
func (e *Extractor) Extract(sourceFile, rawMarkup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawMarkup))
	if err != nil {
		return nil, naverrors.NewIOError(naverrors.ErrCodeInvalidMarkup, "failed to parse markup", err).
			WithFile(sourceFile)
	}

	nav := e.navigation.MatchFirst(root)
	crumb := e.breadcrumb.MatchFirst(root)

	doc := &Document{
		Path:          sourceFile,
		References:    make([]Reference, 0),
		HasBreadcrumb: crumb != nil,
	}

	linked := matchSet(e.reference, root)
	embedded := matchSet(e.source, root)

	walk(root, func(node *html.Node) {
		if linked[node] {
			if href, ok := attr(node, "href"); ok {
				region := RegionBody
				switch {
				case nav != nil && within(node, nav):
					region = RegionNavigation
				case crumb != nil && within(node, crumb):
					region = RegionBreadcrumb
				}
				doc.References = append(doc.References, Reference{
					SourceFile: sourceFile,
					Target:     strings.TrimSpace(href),
					Label:      label(node),
					Region:     region,
					Attribute:  AttributeHref,
				})
			}
		}
		if embedded[node] {
			if src, ok := attr(node, "src"); ok {
				doc.References = append(doc.References, Reference{
					SourceFile: sourceFile,
					Target:     strings.TrimSpace(src),
					Label:      label(node),
					Region:     RegionBody,
					Attribute:  AttributeSrc,
				})
			}
		}
	})

	if nav != nil {
		block := &NavigationBlock{
			Owner:    sourceFile,
			Links:    doc.ReferencesIn(RegionNavigation),
			Controls: make([]string, 0),
		}
		for _, node := range e.control.MatchAll(nav) {
			if text := controlLabel(node); text != "" {
				block.Controls = append(block.Controls, text)
			}
		}
		doc.Navigation = block
	}

	return doc, nil
}

func matchSet(sel cascadia.Selector, root *html.Node) map[*html.Node]bool {
	set := make(map[*html.Node]bool)
	for _, node := range sel.MatchAll(root) {
		set[node] = true
	}
	return set
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// within reports whether n is ancestor or one of its descendants.
func within(n, ancestor *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// label returns the visible text of n, falling back to aria-label, title and
// alt.
func label(n *html.Node) string {
	if text := collapse(textContent(n)); text != "" {
		return text
	}
	for _, key := range []string{"aria-label", "title", "alt"} {
		if v, ok := attr(n, key); ok {
			if text := collapse(v); text != "" {
				return text
			}
		}
	}
	return ""
}

func controlLabel(n *html.Node) string {
	if n.DataAtom == atom.Input {
		if v, ok := attr(n, "value"); ok {
			if text := collapse(v); text != "" {
				return text
			}
		}
		if v, ok := attr(n, "aria-label"); ok {
			return collapse(v)
		}
		return ""
	}
	return label(n)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.DataAtom == atom.Script || node.DataAtom == atom.Style) {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return b.String()
}

// collapse trims s and folds runs of whitespace to a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
