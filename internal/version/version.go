// Package version reports the build identity of the navcheck binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"gitCommit" yaml:"gitCommit"`
	BuildTime time.Time `json:"buildTime" yaml:"buildTime"`
	GoVersion string    `json:"goVersion" yaml:"goVersion"`
	Platform  string    `json:"platform" yaml:"platform"`
	Dirty     bool      `json:"dirty" yaml:"dirty"`
}

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildTime is the time when the binary was built (RFC3339 format)
	BuildTime = "unknown"
)

// GetBuildInfo returns the build information of the running binary
func GetBuildInfo() *BuildInfo {
	settings := vcsSettings()
	return &BuildInfo{
		Version:   resolveVersion(Version, settings),
		GitCommit: resolveCommit(GitCommit, settings),
		BuildTime: parseISOTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Dirty:     settings["vcs.modified"] == "true",
	}
}

// Short returns a short version string suitable for display
func (b *BuildInfo) Short() string {
	if b.GitCommit != "unknown" && len(b.GitCommit) >= 7 {
		shortCommit := b.GitCommit[:7]
		if b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-") {
			return fmt.Sprintf("%s (%s)", b.Version, shortCommit)
		}
		return fmt.Sprintf("dev-%s", shortCommit)
	}
	return b.Version
}

// Detailed returns every field, one per line
func (b *BuildInfo) Detailed() string {
	parts := []string{fmt.Sprintf("Version: %s", b.Version)}

	if b.GitCommit != "unknown" {
		parts = append(parts, fmt.Sprintf("Commit: %s", b.GitCommit))
	}
	if !b.BuildTime.IsZero() {
		parts = append(parts, fmt.Sprintf("Built: %s", b.BuildTime.Format(time.RFC3339)))
	}
	parts = append(parts, fmt.Sprintf("Go: %s", b.GoVersion))
	parts = append(parts, fmt.Sprintf("Platform: %s", b.Platform))
	if b.Dirty {
		parts = append(parts, "Working directory: dirty")
	}

	return strings.Join(parts, "\n")
}

// IsRelease returns true if this is a release build (not dev)
func (b *BuildInfo) IsRelease() bool {
	return b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-")
}

func vcsSettings() map[string]string {
	settings := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	settings["main.version"] = info.Main.Version
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	return settings
}

func resolveVersion(linked string, settings map[string]string) string {
	if linked != "" && linked != "dev" {
		return linked
	}
	if v := settings["main.version"]; v != "" && v != "(devel)" {
		return v
	}
	if rev := settings["vcs.revision"]; len(rev) >= 7 {
		return fmt.Sprintf("dev-%s", rev[:7])
	}
	return "dev"
}

func resolveCommit(linked string, settings map[string]string) string {
	if linked != "" && linked != "unknown" {
		return linked
	}
	if rev := settings["vcs.revision"]; rev != "" {
		return rev
	}
	return "unknown"
}

// parseISOTime parses an ISO 8601 time string, returns zero time on error
func parseISOTime(timeStr string) time.Time {
	if timeStr == "" || timeStr == "unknown" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Time{}
}
