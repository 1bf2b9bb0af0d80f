package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
)

// CustomizeXpath replaces the placeholders v1, v2, v3... in rawXPath with
// values, in order. The raw XPath is scanned once, so text inside a value is
// never treated as a placeholder, and v10 is matched before v1.
func CustomizeXpath(rawXPath string, values ...string) string {
	if len(values) == 0 {
		return rawXPath
	}
	pairs := make([]string, 0, 2*len(values))
	for i := len(values) - 1; i >= 0; i-- {
		pairs = append(pairs, fmt.Sprintf("v%d", i+1), values[i])
	}
	return strings.NewReplacer(pairs...).Replace(rawXPath)
}

// QuerySource evaluates xpath against an HTML page source and returns the
// trimmed inner text of every match.
func QuerySource(source, xpath string) ([]string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse page source: %w", err)
	}
	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", xpath, err)
	}
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, strings.TrimSpace(htmlquery.InnerText(n)))
	}
	return texts, nil
}

// QueryPage fetches the current page source and evaluates xpath against it.
func (u *Utils) QueryPage(ctx context.Context, xpath string) ([]string, error) {
	source, err := u.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	return QuerySource(source, xpath)
}
