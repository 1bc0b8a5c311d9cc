package config

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"

	naverrors "github.com/conneroisu/navcheck/internal/errors"
)

// Validate checks a Config built outside Load, such as one from the builder.
func Validate(config *Config) error {
	return validateConfig(config)
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	var vec naverrors.ValidationErrorCollection

	validateSiteConfig(&config.Site, &vec)
	validateMarkupConfig(&config.Markup, &vec)
	validateLabelsConfig(&config.Labels, &vec)
	validateSequences(config.Sequences, &vec)
	validateCheckConfig(&config.Check, &vec)
	validateOutputConfig(&config.Output, &vec)

	if err := vec.ErrOrNil(); err != nil {
		return &naverrors.NavError{
			Type:    naverrors.ErrorTypeConfig,
			Code:    naverrors.ErrCodeConfigInvalid,
			Message: "configuration rejected",
			Cause:   err,
		}
	}

	return nil
}

func validateSiteConfig(site *SiteConfig, vec *naverrors.ValidationErrorCollection) {
	if strings.TrimSpace(site.Root) == "" {
		vec.AddField("site.root", site.Root, "must not be empty")
	}

	if err := validateRelativePath(site.PathsDir); err != nil {
		vec.AddField("site.paths_dir", site.PathsDir, err.Error())
	}

	if !isPlainFileName(site.IndexFile) {
		vec.AddField("site.index_file", site.IndexFile, "must be a file name without directories")
	}

	for _, ext := range site.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			vec.AddField("site.extensions", ext, "extension must start with '.'")
		}
	}

	for _, pattern := range site.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			vec.AddField("site.exclude", pattern, fmt.Sprintf("invalid pattern: %v", err))
		}
	}
}

func validateMarkupConfig(markup *MarkupConfig, vec *naverrors.ValidationErrorCollection) {
	selectors := []struct {
		field    string
		selector string
	}{
		{"markup.navigation_selector", markup.NavigationSelector},
		{"markup.breadcrumb_selector", markup.BreadcrumbSelector},
		{"markup.reference_selector", markup.ReferenceSelector},
		{"markup.source_selector", markup.SourceSelector},
		{"markup.control_selector", markup.ControlSelector},
	}

	for _, s := range selectors {
		if _, err := cascadia.ParseGroup(s.selector); err != nil {
			vec.AddField(s.field, s.selector, fmt.Sprintf("invalid selector: %v", err))
		}
	}
}

func validateLabelsConfig(labels *LabelsConfig, vec *naverrors.ValidationErrorCollection) {
	sets := map[string][]string{
		"labels.continue":       labels.Continue,
		"labels.complete_stage": labels.CompleteStage,
		"labels.finish_path":    labels.FinishPath,
	}

	for _, field := range []string{"labels.continue", "labels.complete_stage", "labels.finish_path"} {
		tokens := sets[field]
		if len(tokens) == 0 {
			vec.AddField(field, tokens, "must contain at least one token")
		}
		for _, token := range tokens {
			if strings.TrimSpace(token) == "" {
				vec.AddField(field, token, "tokens must not be blank")
			}
		}
	}
}

func validateSequences(sequences []SequenceConfig, vec *naverrors.ValidationErrorCollection) {
	seen := make(map[string]bool, len(sequences))

	for i, seq := range sequences {
		field := fmt.Sprintf("sequences[%d]", i)

		if !isPlainFileName(seq.Path) {
			vec.AddField(field+".path", seq.Path, "must be a single directory name")
		}
		if !isPlainFileName(seq.Stage) {
			vec.AddField(field+".stage", seq.Stage, "must be a single directory name")
		}

		if seen[seq.Key()] {
			vec.AddField(field, seq.Key(), "duplicate path/stage sequence")
		}
		seen[seq.Key()] = true

		for _, module := range seq.Modules {
			if !isPlainFileName(module) {
				vec.AddField(field+".modules", module, "module must be a file name without directories")
			}
		}

		if dup := firstDuplicate(seq.Modules); dup != "" {
			vec.AddField(field+".modules", dup, "module listed more than once")
		}
	}
}

func validateCheckConfig(check *CheckConfig, vec *naverrors.ValidationErrorCollection) {
	if check.Workers < 0 {
		vec.AddField("check.workers", check.Workers, "must not be negative")
	}

	if _, err := path.Match(check.ModulePattern, ""); err != nil || strings.Contains(check.ModulePattern, "/") {
		vec.AddField("check.module_pattern", check.ModulePattern, "must be a file name glob")
	}
}

func validateOutputConfig(output *OutputConfig, vec *naverrors.ValidationErrorCollection) {
	if !slices.Contains(OutputFormats, output.Format) {
		vec.AddField("output.format", output.Format,
			fmt.Sprintf("must be one of: %s", strings.Join(OutputFormats, ", ")))
	}
}

// validateRelativePath rejects absolute paths and traversal.
func validateRelativePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}

	clean := path.Clean(filepath.ToSlash(p))
	if path.IsAbs(clean) || filepath.IsAbs(p) {
		return fmt.Errorf("must be relative to the site root")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path contains traversal: %s", p)
	}

	return nil
}

func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func firstDuplicate(items []string) string {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item] {
			return item
		}
		seen[item] = true
	}
	return ""
}
