// Package cmd provides the command-line interface for navcheck.
//
// # Available Commands
//
//   - check: Run one link and navigation check and print a report
//   - watch: Re-run the check after every burst of content changes
//   - config: Print or validate the effective configuration
//   - version: Show build information
//
// # Command Examples
//
//	// Check the site in ./public
//	navcheck check --root public
//
//	// Fail on mixed absolute and relative navigation links too
//	navcheck check --strict
//
//	// Write a standalone HTML report
//	navcheck check --format html --output-file report.html
//
//	// Watch while editing
//	navcheck watch --verbose
//
// # Configuration
//
//	Sources in order of precedence:
//	1. Command-line flags (--root, --strict, etc.) - highest priority
//	2. NAVCHECK_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (NAVCHECK_CHECK_STRICT, etc.)
//	4. Configuration file (.navcheck.yml) - lowest priority
//
// Environment Variables:
//
//	NAVCHECK_CONFIG_FILE: Path to custom configuration file
//	NAVCHECK_SITE_ROOT: Override the site root
//	NAVCHECK_CHECK_WORKERS: Override the worker count
//	And others following the NAVCHECK_<SECTION>_<OPTION> pattern
//
// # Exit Status
//
// check exits 0 when the report passes and 1 when it fails or when the
// configuration, the site root or a selector is unusable. The report is
// still written for a failed check.
package cmd
