package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
	"github.com/conneroisu/navcheck/internal/links"
	"github.com/conneroisu/navcheck/internal/markup"
	"github.com/conneroisu/navcheck/internal/navigation"
)

func resolvedLink(source, target, resolved string, exists bool) links.ResolvedLink {
	return links.ResolvedLink{
		ClassifiedReference: links.ClassifyReference(markup.Reference{SourceFile: source, Target: target}),
		Resolution:          links.Resolution{Path: resolved, Document: resolved, Exists: exists},
	}
}

func classified(source, target string, region markup.Region) links.ClassifiedReference {
	return links.ClassifyReference(markup.Reference{
		SourceFile: source,
		Target:     target,
		Region:     region,
		Attribute:  markup.AttributeHref,
	})
}

func sampleReport(strict bool) *Report {
	agg := NewAggregator()
	agg.EnableInventory()
	agg.SetFilesScanned(6)
	agg.AddFileErrors([]naverrors.FileError{{File: "paths/a/s/broken.html", Message: "invalid UTF-8"}})
	agg.AddReferences("paths/a/s/module-1.html", []links.ClassifiedReference{
		classified("paths/a/s/module-1.html", "./", markup.RegionNavigation),
		classified("paths/a/s/module-1.html", "module-5.html", markup.RegionBody),
		classified("paths/a/s/module-1.html", "https://example.com/<x>", markup.RegionBody),
	})
	agg.AddLinks([]links.ResolvedLink{
		resolvedLink("paths/a/s/module-1.html", "./", "paths/a/s", true),
		resolvedLink("paths/a/s/module-1.html", "module-5.html", "paths/a/s/module-5.html", false),
	})
	agg.AddLinks([]links.ResolvedLink{
		resolvedLink("paths/a/s/module-2.html", "module-1.html", "paths/a/s/module-1.html", true),
	})
	agg.AddStage(&navigation.StageResult{
		Key: "a/s",
		Violations: []navigation.Violation{
			{File: "paths/a/s/module-2.html", Kind: navigation.KindMissingNavigation, Message: "module has no navigation region"},
			{File: "paths/a/s/module-3.html", Kind: navigation.KindMissingContinueControl, Message: "middle module has no continue control"},
			{File: "paths/a/s", Kind: navigation.KindInconsistentLinkType, Message: "mixed"},
		},
		LinkTypes: navigation.LinkTypeCounts{Absolute: 1, Relative: 2},
		Labels:    []string{"Continue", "<b>Done</b>"},
		Modules:   3,
	})
	agg.AddStage(&navigation.StageResult{
		Key:        "a/t",
		Violations: []navigation.Violation{},
		Labels:     []string{"Continue", "Complete Stage"},
		Modules:    1,
	})
	return agg.Finish(strict)
}

func TestAggregator(t *testing.T) {
	r := sampleReport(false)

	assert.Equal(t, 6, r.FilesScanned)
	assert.Equal(t, 3, r.InternalLinksChecked)
	assert.Equal(t, []BrokenLink{{
		File:         "paths/a/s/module-1.html",
		Target:       "module-5.html",
		ResolvedPath: "paths/a/s/module-5.html",
	}}, r.BrokenLinks)
	assert.Equal(t, []MissingNavigation{{File: "paths/a/s/module-2.html"}}, r.MissingNavigation)
	require.Len(t, r.SequencingViolations, 2)
	assert.Equal(t, navigation.KindInconsistentLinkType, r.SequencingViolations[1].Kind)
	assert.Equal(t, []string{"<b>Done</b>", "Complete Stage", "Continue"}, r.ButtonLabelVariants)

	kinds := make([]navigation.Kind, 0, len(r.Violations))
	for _, v := range r.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []navigation.Kind{
		navigation.KindBrokenLink,
		navigation.KindMissingNavigation,
		navigation.KindMissingContinueControl,
		navigation.KindInconsistentLinkType,
	}, kinds)
	assert.Equal(t, "module-5.html", r.Violations[0].Target)

	want := Summary{
		ModulesChecked:       4,
		StagesChecked:        2,
		BrokenLinks:          1,
		MissingNavigation:    1,
		SequencingViolations: 1,
		Advisories:           1,
		FileErrors:           1,
		Passed:               false,
	}
	if diff := cmp.Diff(want, r.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, r.Failed())
}

func TestAddReferences(t *testing.T) {
	r := sampleReport(false)

	assert.Equal(t, map[string]int{
		"external":          1,
		"anchor":            0,
		"email":             0,
		"absolute-internal": 0,
		"relative-internal": 2,
	}, r.ReferencesByCategory)
	require.Len(t, r.Inventory, 1)
	assert.Equal(t, FileInventory{
		File: "paths/a/s/module-1.html",
		References: []InventoryEntry{
			{Target: "./", Category: "relative-internal", Region: "navigation", Attribute: "href"},
			{Target: "module-5.html", Category: "relative-internal", Region: "body", Attribute: "href"},
			{Target: "https://example.com/<x>", Category: "external", Region: "body", Attribute: "href"},
		},
	}, r.Inventory[0])

	agg := NewAggregator()
	agg.AddReferences("a.html", []links.ClassifiedReference{classified("a.html", "mailto:x@example.org", markup.RegionBody)})
	plain := agg.Finish(false)
	assert.Equal(t, 1, plain.ReferencesByCategory["email"])
	assert.Nil(t, plain.Inventory)
}

func TestFinishPassed(t *testing.T) {
	advisoryOnly := func(strict bool) *Report {
		agg := NewAggregator()
		agg.AddLinks([]links.ResolvedLink{resolvedLink("a.html", "b.html", "b.html", true)})
		agg.AddStage(&navigation.StageResult{
			Key:        "p/s",
			Violations: []navigation.Violation{{File: "paths/p/s", Kind: navigation.KindInconsistentLinkType}},
			Modules:    2,
		})
		return agg.Finish(strict)
	}

	assert.True(t, advisoryOnly(false).Summary.Passed)
	assert.False(t, advisoryOnly(true).Summary.Passed)
	assert.True(t, NewAggregator().Finish(true).Summary.Passed)
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sampleReport(false), "json"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{
		"filesScanned", "internalLinksChecked", "brokenLinks", "missingNavigation",
		"sequencingViolations", "buttonLabelVariants", "linkTypeByStage", "fileErrors",
		"violations", "summary", "referencesByCategory", "inventory",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Contains(t, buf.String(), `"absoluteCount": 1`)
	assert.Contains(t, buf.String(), `"<b>Done</b>"`)
	assert.NotContains(t, buf.String(), `"target": ""`)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sampleReport(false), "yaml"))

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.InternalLinksChecked)
	assert.Equal(t, navigation.LinkTypeCounts{Absolute: 1, Relative: 2}, decoded.LinkTypeByStage["a/s"])
	assert.Equal(t, navigation.KindBrokenLink, decoded.Violations[0].Kind)
}

func TestRenderDeterministic(t *testing.T) {
	for _, format := range []string{"console", "json", "yaml", "html"} {
		var first, second bytes.Buffer
		require.NoError(t, Render(context.Background(), &first, sampleReport(false), format))
		require.NoError(t, Render(context.Background(), &second, sampleReport(false), format))
		assert.Equal(t, first.String(), second.String(), format)
	}
}

func TestRenderConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sampleReport(false), "console"))
	out := buf.String()

	assert.Contains(t, out, "Navigation Check Summary")
	assert.Contains(t, out, "ISSUES FOUND")
	assert.Contains(t, out, "module-5.html → paths/a/s/module-5.html")
	assert.Contains(t, out, "MissingContinueControl: middle module has no continue control")
	assert.Contains(t, out, "A / S")

	buf.Reset()
	require.NoError(t, RenderConsole(&buf, NewAggregator().Finish(false)))
	assert.Contains(t, buf.String(), "ALL CHECKS PASSED")
	assert.NotContains(t, buf.String(), "Broken links\n")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, sampleReport(false), "html"))
	out := buf.String()

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "Broken links (1)")
	assert.Contains(t, out, `<div class="violation error"><code>paths/a/s/module-1.html</code><br>module-5.html → paths/a/s/module-5.html</div>`)
	assert.Contains(t, out, `<div class="violation"><code>paths/a/s</code><br>InconsistentLinkType: mixed</div>`)
	assert.Contains(t, out, "<tr><td>relative-internal</td><td>2</td></tr>")
	assert.Contains(t, out, "Reference inventory")
	assert.Contains(t, out, "https://example.com/&lt;x&gt;")
	assert.Contains(t, out, "&lt;b&gt;Done&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Done</b>")
	assert.Contains(t, out, "</html>")
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(context.Background(), &bytes.Buffer{}, sampleReport(false), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestStageTitle(t *testing.T) {
	assert.Equal(t, "Builder / Intro", StageTitle("builder/intro"))
}
