package jsonpath

import (
	gojson "encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyPatch applies an RFC 6902 patch document to json.
func ApplyPatch(json, patch string) (string, error) {
	p, err := jsonpatch.DecodePatch([]byte(patch))
	if err != nil {
		return "", fmt.Errorf("decode patch: %w", err)
	}
	out, err := p.Apply([]byte(json))
	if err != nil {
		return "", fmt.Errorf("apply patch: %w", err)
	}
	return string(out), nil
}

// MergePatch applies an RFC 7386 merge patch to json.
func MergePatch(json, patch string) (string, error) {
	out, err := jsonpatch.MergePatch([]byte(json), []byte(patch))
	if err != nil {
		return "", fmt.Errorf("merge patch: %w", err)
	}
	return string(out), nil
}

// applyOps applies patch operations without escaping HTML characters, so
// values like "<b>" survive unchanged.
func applyOps(json string, ops []map[string]any) (string, error) {
	raw, err := gojson.Marshal(ops)
	if err != nil {
		return "", err
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return "", err
	}
	opts := jsonpatch.NewApplyOptions()
	opts.EscapeHTML = false
	out, err := p.ApplyWithOptions([]byte(json), opts)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
