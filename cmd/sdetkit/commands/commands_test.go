package commands

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-sdet/sdetkit/internal/stub"
)

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJSONCommands(t *testing.T) {
	path := writeFile(t, "user.json", `{"user":{"name":"alice","roles":["admin","qa"]}}`)

	out, err := run(t, "json", "get", path, "$.user.name")
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)

	out, err = run(t, "json", "get", "--all", path, "$.user.roles[*]")
	require.NoError(t, err)
	assert.Equal(t, "admin\nqa\n", out)

	_, err = run(t, "json", "set", path, "$.user.name", "bob")
	require.NoError(t, err)
	out, err = run(t, "json", "get", path, "$.user.name")
	require.NoError(t, err)
	assert.Equal(t, "bob\n", out)
}

func TestXMLCommands(t *testing.T) {
	path := writeFile(t, "order.xml", `<order><item>pen</item><item>ink</item><note>gift</note></order>`)

	out, err := run(t, "xml", "get", path, "//item")
	require.NoError(t, err)
	assert.Equal(t, "pen\nink\n", out)

	_, err = run(t, "xml", "set", path, "//note", "none")
	require.NoError(t, err)
	_, err = run(t, "xml", "delete", path, "//item[2]")
	require.NoError(t, err)

	out, err = run(t, "xml", "get", path, "//item | //note")
	require.NoError(t, err)
	assert.Equal(t, "pen\nnone\n", out)
}

func TestExcelRead_CSV(t *testing.T) {
	path := writeFile(t, "users.csv", "id,name\n1,alice\n2,bob\n")

	out, err := run(t, "excel", "read", path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","name":"alice"},{"id":"2","name":"bob"}]`, out)
}

func TestDiff(t *testing.T) {
	a := writeFile(t, "a.txt", "one\ntwo\n")
	b := writeFile(t, "b.txt", "one\nthree\n")

	out, err := run(t, "diff", a, a)
	require.NoError(t, err)
	assert.Contains(t, out, "Files are identical")

	out, err = run(t, "diff", a, b)
	require.Error(t, err)
	assert.Contains(t, out, "- two")
	assert.Contains(t, out, "+ three")
}

func TestAPICommand(t *testing.T) {
	srv := httptest.NewServer(stub.NewServer([]stub.Route{
		{Method: "GET", Path: "/users/{id}", Status: 200, JSON: map[string]any{"id": 7, "name": "alice"}},
		{Method: "POST", Path: "/login", Status: 401, Body: "denied"},
	}).Handler())
	defer srv.Close()

	out, err := run(t, "api", "get", srv.URL+"/users/7", "--jsonpath", "$.name")
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)

	out, err = run(t, "api", "post", srv.URL+"/login", "-d", `{"user":"x"}`)
	require.Error(t, err)
	assert.Contains(t, out, "denied")
}

func TestPairs(t *testing.T) {
	assert.Nil(t, pairs(nil))
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, pairs([]string{"a=1", "b=x=y", "junk"}))
}

func TestDBQuery_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	_, err := run(t, "db", "query", "select 1")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestDBCommands_SQLite(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(t.TempDir(), "qa.db"))

	_, err := run(t, "db", "exec", "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	out, err := run(t, "db", "exec", "INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "db", "query", "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")

	out, err = run(t, "db", "query", "SELECT * FROM orders")
	require.Error(t, err)
	assert.Contains(t, out, "DB008")
}
