package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Render writes r to w in format (console, json, yaml or html).
func Render(ctx context.Context, w io.Writer, r *Report, format string) error {
	switch format {
	case "", "console":
		return RenderConsole(w, r)
	case "json":
		return RenderJSON(w, r)
	case "yaml":
		return RenderYAML(w, r)
	case "html":
		return Page(r).Render(ctx, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// RenderYAML writes r as YAML.
func RenderYAML(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}

// StageTitle turns a stage key such as "curious/stage-1" into
// "Curious / Stage-1".
func StageTitle(key string) string {
	caser := cases.Title(language.English)
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, " / ")
}

// RenderConsole writes a human readable summary.
func RenderConsole(w io.Writer, r *Report) error {
	p := &printer{w: w}
	s := r.Summary

	p.printf("\n🔍 Navigation Check Summary\n")
	p.printf("═══════════════════════════\n\n")
	p.printf("Files scanned:          %d\n", r.FilesScanned)
	p.printf("Internal links checked: %d\n", r.InternalLinksChecked)
	p.printf("Stages checked:         %d\n", s.StagesChecked)
	p.printf("Modules checked:        %d\n", s.ModulesChecked)
	p.printf("Broken links:           %d\n", s.BrokenLinks)
	p.printf("Missing navigation:     %d\n", s.MissingNavigation)
	p.printf("Sequencing violations:  %d\n", s.SequencingViolations)
	p.printf("Advisories:             %d\n", s.Advisories)
	p.printf("File errors:            %d\n", s.FileErrors)

	status, icon := "ALL CHECKS PASSED", "✅"
	switch {
	case !s.Passed:
		status, icon = "ISSUES FOUND", "❌"
	case s.Advisories > 0:
		status, icon = "PASSED WITH ADVISORIES", "⚠️"
	}
	p.printf("Status:                 %s %s\n\n", icon, status)

	if len(r.FileErrors) > 0 {
		p.section("🚨 File errors")
		for _, fe := range r.FileErrors {
			p.printf("• %s\n  %s\n", fe.File, fe.Message)
		}
		p.printf("\n")
	}

	if len(r.BrokenLinks) > 0 {
		p.section("🔗 Broken links")
		for _, bl := range r.BrokenLinks {
			p.printf("• %s\n  %s → %s\n", bl.File, bl.Target, bl.ResolvedPath)
		}
		p.printf("\n")
	}

	if len(r.MissingNavigation) > 0 {
		p.section("🧭 Missing navigation")
		for _, mn := range r.MissingNavigation {
			p.printf("• %s\n", mn.File)
		}
		p.printf("\n")
	}

	if len(r.SequencingViolations) > 0 {
		p.section("📋 Sequencing violations")
		for _, sv := range r.SequencingViolations {
			marker := "•"
			if sv.Kind.Advisory() {
				marker = "ℹ️"
			}
			p.printf("%s %s\n  %s: %s\n", marker, sv.File, sv.Kind, sv.Message)
		}
		p.printf("\n")
	}

	if len(r.LinkTypeByStage) > 0 {
		p.section("📊 Navigation link types")
		keys := make([]string, 0, len(r.LinkTypeByStage))
		for key := range r.LinkTypeByStage {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			counts := r.LinkTypeByStage[key]
			p.printf("%-32s absolute %3d  relative %3d\n", StageTitle(key), counts.Absolute, counts.Relative)
		}
		p.printf("\n")
	}

	if len(r.ButtonLabelVariants) > 0 {
		p.section("🏷️  Control labels")
		for _, label := range r.ButtonLabelVariants {
			p.printf("• %s\n", label)
		}
		p.printf("\n")
	}

	return p.err
}

// printer remembers the first write error so the console renderer can print
// without checking every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("%s\n", title)
	p.printf("%s\n\n", strings.Repeat("─", 30))
}
