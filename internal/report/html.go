package report

import (
	"fmt"
	"sort"
)

//go:generate templ generate

// item is one entry of a violation section. Advisories render without the
// error styling.
type item struct {
	file     string
	detail   string
	advisory bool
}

func sectionTitle(title string, n int) string {
	return fmt.Sprintf("%s (%d)", title, n)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func fileErrorItems(r *Report) []item {
	items := make([]item, 0, len(r.FileErrors))
	for _, fe := range r.FileErrors {
		items = append(items, item{file: fe.File, detail: fe.Message})
	}
	return items
}

func brokenLinkItems(r *Report) []item {
	items := make([]item, 0, len(r.BrokenLinks))
	for _, bl := range r.BrokenLinks {
		items = append(items, item{file: bl.File, detail: bl.Target + " → " + bl.ResolvedPath})
	}
	return items
}

func missingNavigationItems(r *Report) []item {
	items := make([]item, 0, len(r.MissingNavigation))
	for _, mn := range r.MissingNavigation {
		items = append(items, item{file: mn.File, detail: "no navigation region"})
	}
	return items
}

func sequencingItems(r *Report) []item {
	items := make([]item, 0, len(r.SequencingViolations))
	for _, sv := range r.SequencingViolations {
		items = append(items, item{
			file:     sv.File,
			detail:   string(sv.Kind) + ": " + sv.Message,
			advisory: sv.Kind.Advisory(),
		})
	}
	return items
}
