//go:build property
// +build property

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/navcheck/internal/logging"
)

// TestScannerProperties tests invariant properties of the content scanner
func TestScannerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: results are sorted and independent of the worker count
	properties.Property("scan order is deterministic", prop.ForAll(
		func(fileCount, workers int) bool {
			root := t.TempDir()
			for i := 0; i < fileCount; i++ {
				rel := filepath.Join("paths", fmt.Sprintf("p%d", i%3), fmt.Sprintf("module-%d.html", i))
				full := filepath.Join(root, rel)
				if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
					return false
				}
				if err := os.WriteFile(full, []byte(rel), 0o644); err != nil {
					return false
				}
			}

			scan := func(w int) []ContentFile {
				s, err := NewContentScanner(Options{Root: root, Extensions: []string{".html"}, Workers: w},
					logging.NewTestLogger())
				if err != nil {
					return nil
				}
				result, err := s.Scan(context.Background())
				if err != nil {
					return nil
				}
				return result.Files
			}

			serial := scan(1)
			parallel := scan(workers)
			if len(serial) != fileCount || !reflect.DeepEqual(serial, parallel) {
				return false
			}
			return sort.SliceIsSorted(serial, func(i, j int) bool { return serial[i].Path < serial[j].Path })
		},
		gen.IntRange(0, 30),
		gen.IntRange(1, 16),
	))

	properties.TestingRun(t)
}
