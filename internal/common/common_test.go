package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "currency with sign", input: "-$300.00", want: 300},
		{name: "thousands separator", input: "₹1,234.50", want: 1234.5},
		{name: "plain integer", input: "42", want: 42},
		{name: "text around number", input: "Total: 19.99 USD", want: 19.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NumericValue(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNumericValue_NoDigits(t *testing.T) {
	_, err := NumericValue("n/a")
	assert.Error(t, err)
}

func TestIntegerValue(t *testing.T) {
	got, err := IntegerValue("$99.99")
	require.NoError(t, err)
	assert.Equal(t, 99, got)
}

func TestReplaceLineBreaksWithSpace(t *testing.T) {
	assert.Equal(t, "a b c", ReplaceLineBreaksWithSpace("a\nb\r\nc"))
	assert.Equal(t, "single", ReplaceLineBreaksWithSpace("single"))
}

func TestWaitFor(t *testing.T) {
	start := time.Now()
	require.NoError(t, WaitFor(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestWaitFor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Minute)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "FAIL", StatusFail.String())
}

func TestRandomUUID(t *testing.T) {
	a, b := RandomUUID(), RandomUUID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "Excel formula with quotes", input: `="00123"`, want: "00123"},
		{name: "Excel formula without quotes", input: "=SUM", want: "SUM"},
		{name: "double quoted", input: `"quoted"`, want: "quoted"},
		{name: "single quoted", input: "'quoted'", want: "quoted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCell(tt.input))
		})
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" Name ", "EMAIL", `="Phone"`, "name"})

	i, ok := idx.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, 0, i, "first duplicate wins")

	i, ok = idx.Lookup("Email")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = idx.Lookup("phone")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
}
