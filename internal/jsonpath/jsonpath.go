// Package jsonpath reads and rewrites JSON documents addressed by JSONPath
// expressions such as $.store.book[0].title.
//
// Documents travel as strings so values lifted from an API response can be
// passed straight in. Scalar results come back as their plain text; objects
// and arrays come back as compact JSON with sorted keys. Update rewrites the
// document in place and keeps its key order.
package jsonpath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/the-sdet/sdetkit/internal/files"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrNoMatch is returned when a path selects nothing.
var ErrNoMatch = errors.New("json path matched nothing")

var compact = &oj.Options{Sort: true}

// ReadFile returns the content of a JSON file.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error(context.Background(), "Error while reading JSON file: "+path, err)
		return "", fmt.Errorf("read json %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile writes json to path, creating parent directories.
func WriteFile(json, path string) error {
	if err := files.WriteFile(path, []byte(json)); err != nil {
		logging.Error(context.Background(), "Error while writing JSON file: "+path, err)
		return fmt.Errorf("write json %s: %w", path, err)
	}
	return nil
}

// parse decodes json and compiles path.
func parse(json, path string) (any, jp.Expr, error) {
	data, err := oj.ParseString(json)
	if err != nil {
		return nil, nil, fmt.Errorf("parse json: %w", err)
	}
	x, err := jp.ParseString(strings.TrimSpace(path))
	if err != nil {
		return nil, nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return data, x, nil
}

// render turns a decoded value into its text form.
func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return oj.JSON(v, compact)
}

// Value returns the value selected by path. A path that can select several
// values (wildcards, descent, filters, slices, unions) yields a JSON array of
// every match, even when only one matched.
func Value(json, path string) (string, error) {
	data, x, err := parse(json, path)
	if err != nil {
		return "", err
	}
	return valueOf(data, x, path)
}

func valueOf(data any, x jp.Expr, path string) (string, error) {
	results := x.Get(data)
	if indefinite(x) {
		if results == nil {
			results = []any{}
		}
		return oj.JSON(results, compact), nil
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoMatch)
	}
	return render(results[0]), nil
}

// indefinite reports whether x may select more than one value.
func indefinite(x jp.Expr) bool {
	for _, f := range x {
		switch f.(type) {
		case jp.Wildcard, jp.Descent, jp.Slice, jp.Union, jp.Filter, *jp.Filter:
			return true
		}
	}
	return false
}

// Values returns every value selected by path. A single array result is
// flattened into its elements.
func Values(json, path string) ([]string, error) {
	data, x, err := parse(json, path)
	if err != nil {
		return nil, err
	}
	results := x.Get(data)
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoMatch)
	}
	if len(results) == 1 {
		if list, ok := results[0].([]any); ok {
			results = list
		}
	}

	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, render(r))
	}
	return out, nil
}

// ValuesOf returns one value per path, in order.
func ValuesOf(json string, paths ...string) ([]string, error) {
	data, err := oj.ParseString(json)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		x, err := jp.ParseString(p)
		if err != nil {
			return nil, fmt.Errorf("parse path %q: %w", p, err)
		}
		v, err := valueOf(data, x, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ValuesByKey resolves each named path and returns the values under the
// same names.
func ValuesByKey(json string, paths map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for name, p := range paths {
		v, err := Value(json, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Update sets every location selected by path to value and returns the
// re-encoded document with its original key order.
func Update(json, path, value string) (string, error) {
	ctx := context.Background()

	data, x, err := parse(json, path)
	if err != nil {
		return "", err
	}
	locs := x.Locate(data, 0)
	if len(locs) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoMatch)
	}
	logging.Info(ctx, "Updating JSON value", "path", path, "previous", render(locs[0].First(data)), "value", value)

	ops := make([]map[string]any, 0, len(locs))
	for _, loc := range locs {
		ops = append(ops, map[string]any{"op": "replace", "path": pointer(loc), "value": value})
	}
	out, err := applyOps(json, ops)
	if err != nil {
		logging.Error(ctx, "Error while updating JSON", err, "path", path)
		return "", fmt.Errorf("set %s: %w", path, err)
	}
	return out, nil
}

// pointer converts a normalized path from Locate into an RFC 6901 pointer.
func pointer(loc jp.Expr) string {
	var b strings.Builder
	for _, f := range loc {
		switch tf := f.(type) {
		case jp.Child:
			b.WriteByte('/')
			b.WriteString(pointerEscaper.Replace(string(tf)))
		case jp.Nth:
			b.WriteByte('/')
			b.WriteString(strconv.Itoa(int(tf)))
		}
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
