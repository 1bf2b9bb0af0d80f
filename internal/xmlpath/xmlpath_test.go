package xmlpath

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `<?xml version="1.0" encoding="UTF-8"?>
<catalog>
  <book id="1"><title>Go</title><price>10</price></book>
  <book id="2"><title>Rust</title><price>12</price></book>
</catalog>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(catalog)
	require.NoError(t, err)
	return doc
}

func TestValue(t *testing.T) {
	doc := mustParse(t)

	got, err := Value(doc, "//book[@id='2']/title")
	require.NoError(t, err)
	assert.Equal(t, "Rust", got)

	_, err = Value(doc, "//magazine")
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestValue_BadExpression(t *testing.T) {
	_, err := Value(mustParse(t), "//book[")
	assert.Error(t, err)
}

func TestValues(t *testing.T) {
	got, err := Values(mustParse(t), "//title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, got)
}

func TestUpdate(t *testing.T) {
	doc := mustParse(t)

	require.NoError(t, Update(doc, "//book[1]/title", "Java"))

	got, err := Values(doc, "//title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Java", "Rust"}, got)
}

func TestUpdate_NoMatchIsNoop(t *testing.T) {
	doc := mustParse(t)
	before := doc.String()

	require.NoError(t, Update(doc, "//magazine", "x"))
	assert.Equal(t, before, doc.String())
}

func TestDelete(t *testing.T) {
	doc := mustParse(t)

	require.NoError(t, Delete(doc, "//book[@id='1']"))

	got, err := Values(doc, "//title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, got)
	assert.NotContains(t, String(doc), "<title>Go</title>")
}

func TestDelete_NoMatchIsNoop(t *testing.T) {
	doc := mustParse(t)
	require.NoError(t, Delete(doc, "//magazine"))

	got, err := Values(doc, "//book")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveAndReadFile(t *testing.T) {
	doc := mustParse(t)
	require.NoError(t, Update(doc, "//book[@id='2']/price", "15"))

	path := filepath.Join(t.TempDir(), "out", "catalog.xml")
	require.NoError(t, Save(doc, path))

	reread, err := ReadFile(path)
	require.NoError(t, err)
	got, err := Value(reread, "//book[@id='2']/price")
	require.NoError(t, err)
	assert.Equal(t, "15", got)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorContains(t, err, "missing.xml")
}

func TestContentFromResponse(t *testing.T) {
	resp := `<soap:Body><Token>abc123</Token></soap:Body>`

	got, ok := ContentFromResponse(resp, `<Token>(.*?)</Token>`)
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)

	_, ok = ContentFromResponse(resp, `<Session>(.*?)</Session>`)
	assert.False(t, ok)

	_, ok = ContentFromResponse(resp, `(unclosed`)
	assert.False(t, ok)
}
