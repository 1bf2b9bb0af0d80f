package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Null is how SQL NULL is rendered.
const Null = "null"

// Record is one result row with its column names, in select order.
type Record struct {
	Columns []string
	Values  []string
}

// Get returns the value of column, matched case-insensitively.
func (r Record) Get(column string) (string, bool) {
	for i, c := range r.Columns {
		if strings.EqualFold(c, column) {
			return r.Values[i], true
		}
	}
	return "", false
}

// Map returns the record as column -> value.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// textual reports whether a database type name holds characters, so that a
// 16 character string is never mistaken for a binary UUID.
func textual(typeName string) bool {
	t := strings.ToUpper(typeName)
	return strings.Contains(t, "CHAR") || strings.Contains(t, "TEXT") || strings.Contains(t, "CLOB")
}

// stringify renders a scanned value.
func stringify(v any, typeName string) string {
	switch x := v.(type) {
	case nil:
		return Null
	case []byte:
		if len(x) == 16 && !textual(typeName) {
			if id, err := uuid.FromBytes(x); err == nil {
				return id.String()
			}
		}
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
