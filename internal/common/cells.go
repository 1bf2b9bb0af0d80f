package common

// cells.go normalises raw spreadsheet and CSV cell text before comparison.
//
// Exported data tends to carry artifacts that never show up on screen:
//   - Excel formula prefixes (="value")
//   - Surrounding quotes
//   - Leading and trailing whitespace

import "strings"

// HeaderIndex maps a lowercased, cleaned header to its column position.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Duplicate headers keep the first position.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Lookup returns the column of header, matched case-insensitively.
func (h HeaderIndex) Lookup(header string) (int, bool) {
	i, ok := h[strings.ToLower(CleanCell(header))]
	return i, ok
}

// CleanCell removes common export artifacts from a cell value.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
