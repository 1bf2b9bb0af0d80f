package files

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line-oriented diff of a and b with "- " and "+ " markers,
// or "" when they are equal.
func Diff(a, b string) string {
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// CompareFiles reads both files and reports whether their contents match,
// along with a Diff when they do not.
func CompareFiles(a, b string) (bool, string, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, "", fmt.Errorf("read %s: %w", a, err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, "", fmt.Errorf("read %s: %w", b, err)
	}
	if bytes.Equal(da, db) {
		return true, "", nil
	}
	return false, Diff(string(da), string(db)), nil
}
