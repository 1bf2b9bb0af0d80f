// Package common holds the small helpers every test suite ends up needing:
// number extraction from UI text, fixed waits, date reformatting, and
// timestamp-based test data.
package common

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/the-sdet/sdetkit/internal/logging"
)

const (
	// EmptyString represents a string without content.
	EmptyString = ""
	// DotCom is appended to generated email domains.
	DotCom = ".com"
	// At separates the local part and domain of generated emails.
	At = "@"
)

// Status is the outcome of a test scenario.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

func (s Status) String() string { return string(s) }

var (
	nonNumericRegex = regexp.MustCompile(`[^\d.]`)
	lineBreakRegex  = regexp.MustCompile(`\r?\n`)
)

// NumericValue extracts the number embedded in UI text by dropping every
// character other than digits and '.'. Signs are dropped too: "-$300.00" is 300.
func NumericValue(text string) (float64, error) {
	cleaned := nonNumericRegex.ReplaceAllString(text, EmptyString)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("no numeric value in %q: %w", text, err)
	}
	return v, nil
}

// IntegerValue is NumericValue truncated toward zero.
func IntegerValue(text string) (int, error) {
	v, err := NumericValue(text)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		logging.Error(ctx, "Error while applying wait...", ctx.Err())
		return ctx.Err()
	case <-timer.C:
	}

	logging.Info(ctx, fmt.Sprintf("%d seconds of wait completed...", int(d.Seconds())))
	return nil
}

// ReplaceLineBreaksWithSpace replaces every \n or \r\n with a single space.
func ReplaceLineBreaksWithSpace(input string) string {
	return lineBreakRegex.ReplaceAllString(input, " ")
}

// RandomUUID returns a random (version 4) UUID string.
func RandomUUID() string {
	return uuid.NewString()
}
