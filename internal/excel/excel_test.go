package excel

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Users"))

	cells := map[string]any{
		"A1": "Name", "B1": " Email ", "C1": "Age",
		"A2": "alice", "B2": "a@x.com", "C2": 30,
		"A3": "bob", "C3": 41.5,
		"A4": "  carol  ",
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Users", cell, v))
	}

	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestHeaderList(t *testing.T) {
	got, err := HeaderList(writeWorkbook(t), "Users")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email", "Age"}, got)
}

func TestColumnValues(t *testing.T) {
	path := writeWorkbook(t)

	got, err := ColumnValues(path, "Users", 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"30", "41.5", ""}, got)

	got, err = ColumnValues(path, "Users", 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "alice", "bob", "carol"}, got)
}

func TestColumnValuesByHeader(t *testing.T) {
	path := writeWorkbook(t)

	got, err := ColumnValuesByHeader(path, "Users", " email", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "a@x.com", "", ""}, got)

	_, err = ColumnValuesByHeader(path, "Users", "Phone", true)
	assert.True(t, errors.Is(err, ErrHeaderNotFound))
}

func TestRowValues(t *testing.T) {
	path := writeWorkbook(t)

	got, err := RowValues(path, "Users", 1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "a@x.com", "30"}, got)

	got, err = RowValues(path, "Users", 3, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, got)

	got, err = RowValues(path, "Users", 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "41.5"}, got)

	_, err = RowValues(path, "Users", 10, false)
	assert.True(t, errors.Is(err, ErrRowOutOfRange))
}

func TestRowValuesByHeader(t *testing.T) {
	path := writeWorkbook(t)

	got, err := RowValuesByHeader(path, "Users", "BOB ", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "41.5"}, got)

	_, err = RowValuesByHeader(path, "Users", "dave", false)
	assert.True(t, errors.Is(err, ErrHeaderNotFound))
}

func TestReadSheet(t *testing.T) {
	got, err := ReadSheet(writeWorkbook(t), "Users")
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"Name": "alice", "Email": "a@x.com", "Age": "30"},
		{"Name": "bob", "Email": "", "Age": "41.5"},
		{"Name": "carol", "Email": "", "Age": ""},
	}, got)
}

func TestReadSheetSkipFirstColumn(t *testing.T) {
	got, err := ReadSheetSkipFirstColumn(writeWorkbook(t), "Users")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, map[string]string{"Email": "a@x.com", "Age": "30"}, got[0])
}

func TestLoad_Errors(t *testing.T) {
	path := writeWorkbook(t)

	_, err := Load(path, "Nope")
	assert.True(t, errors.Is(err, ErrSheetNotFound))

	_, err = Load(filepath.Join(t.TempDir(), "legacy.xls"), "Users")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"), "Users")
	assert.Error(t, err)
}

func TestSheetNames(t *testing.T) {
	got, err := SheetNames(writeWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Users"}, got)
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.csv")
	content := "\xEF\xBB\xBFName,Code\nalice,=\"007\"\nbob,\xff1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	header, err := HeaderList(path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Code"}, header)

	codes, err := ColumnValuesByHeader(path, "", "code", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"007", "?1"}, codes)
}

func TestCleanReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain ascii", input: "hello", want: "hello"},
		{name: "bom stripped", input: "\xEF\xBB\xBFhello", want: "hello"},
		{name: "multibyte kept", input: "héllo wörld", want: "héllo wörld"},
		{name: "invalid byte replaced", input: "he\xffllo", want: "he?llo"},
		{name: "bom only", input: "\xEF\xBB\xBF", want: ""},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newCleanReader(iotest.HalfReader(strings.NewReader(tt.input))))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
