// Package xmlpath edits XML documents through XPath expressions.
package xmlpath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/the-sdet/sdetkit/internal/files"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrNoMatch is returned by Value when the expression selects nothing.
var ErrNoMatch = errors.New("xpath matched nothing")

// Document is a parsed XML tree.
type Document struct {
	root *xmlquery.Node
}

// Parse reads an XML document from a string.
func Parse(content string) (*Document, error) {
	root, err := xmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return &Document{root: root}, nil
}

// ReadFile parses the XML file at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml %s: %w", path, err)
	}
	defer f.Close()

	root, err := xmlquery.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse xml %s: %w", path, err)
	}
	return &Document{root: root}, nil
}

// Save writes doc to path, creating parent directories.
func Save(doc *Document, path string) error {
	if err := files.WriteFile(path, []byte(doc.String())); err != nil {
		return fmt.Errorf("save xml: %w", err)
	}
	return nil
}

// String renders the document, declaration included.
func (d *Document) String() string {
	return d.root.OutputXML(true)
}

// String renders doc.
func String(doc *Document) string {
	return doc.String()
}

func (d *Document) first(expr string) (*xmlquery.Node, error) {
	n, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	return n, nil
}

// Update replaces the text content of the first node matching expr.
// An expression that matches nothing leaves the document untouched.
func Update(doc *Document, expr, value string) error {
	n, err := doc.first(expr)
	if err != nil {
		return err
	}
	if n == nil {
		logging.Warn(context.Background(), "No XML node to update", "xpath", expr)
		return nil
	}

	if n.Type == xmlquery.AttributeNode && n.Parent != nil {
		n.Parent.SetAttr(n.Data, value)
		return nil
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		xmlquery.RemoveFromTree(c)
		c = next
	}
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: value})
	return nil
}

// Delete removes the first node matching expr from its parent.
// An expression that matches nothing leaves the document untouched.
func Delete(doc *Document, expr string) error {
	n, err := doc.first(expr)
	if err != nil {
		return err
	}
	if n == nil {
		logging.Warn(context.Background(), "No XML node to delete", "xpath", expr)
		return nil
	}
	xmlquery.RemoveFromTree(n)
	return nil
}

// Value returns the text content of the first node matching expr.
func Value(doc *Document, expr string) (string, error) {
	n, err := doc.first(expr)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", fmt.Errorf("%s: %w", expr, ErrNoMatch)
	}
	return n.InnerText(), nil
}

// Values returns the text content of every node matching expr.
func Values(doc *Document, expr string) ([]string, error) {
	nodes, err := xmlquery.QueryAll(doc.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.InnerText())
	}
	return out, nil
}

// ContentFromResponse returns the first capture group of the first match of
// pattern in response. It reports false when nothing matches.
func ContentFromResponse(response, pattern string) (string, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		logging.Error(context.Background(), "Invalid pattern", err, "pattern", pattern)
		return "", false
	}
	m := re.FindStringSubmatch(response)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
