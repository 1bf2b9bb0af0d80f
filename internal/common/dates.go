package common

// dates.go translates Java SimpleDateFormat patterns ("dd/MM/yyyy HH:mm")
// into Go reference layouts so feature files and data sheets written for the
// JVM tooling keep working unchanged.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrUnsupportedPattern is returned for pattern letters with no Go equivalent.
var ErrUnsupportedPattern = errors.New("unsupported date pattern")

// JavaLayout converts a SimpleDateFormat pattern into a Go time layout.
//
// Supported letters: y M d H h k K m s S E a z Z X. Text in single quotes is
// copied literally and '' is a literal quote. Fractional seconds (S) must
// follow a '.' or ',' because that is the only form Go layouts accept.
//
// Go has no 1-24 or 0-11 hour, so k renders like H (0-23) and K like h
// (1-12). Go layouts cannot escape text, so literal text that Go would read
// as a layout element (digits, Jan, Mon, MST, PM, or _ before a day) is
// rejected with ErrUnsupportedPattern.
func JavaLayout(pattern string) (string, error) {
	var b, lit strings.Builder
	runes := []rune(pattern)

	flush := func(next string) error {
		if err := checkLiteral(lit.String(), next); err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
		b.WriteString(lit.String())
		lit.Reset()
		return nil
	}

	for i := 0; i < len(runes); {
		c := runes[i]

		if c == '\'' {
			// '' is an escaped quote, inside or outside quoted text
			if i+1 < len(runes) && runes[i+1] == '\'' {
				lit.WriteRune('\'')
				i += 2
				continue
			}
			i++
			for i < len(runes) {
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						lit.WriteRune('\'')
						i += 2
						continue
					}
					i++
					break
				}
				lit.WriteRune(runes[i])
				i++
			}
			continue
		}

		if !isPatternLetter(c) {
			lit.WriteRune(c)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}

		layout, err := layoutFor(c, n, b.String()+lit.String())
		if err != nil {
			return "", fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if err := flush(layout); err != nil {
			return "", err
		}
		b.WriteString(layout)
		i += n
	}
	if err := flush(""); err != nil {
		return "", err
	}

	return b.String(), nil
}

// layoutWords are the alphabetic elements of a Go layout.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

// checkLiteral rejects literal text that a Go layout would parse as an
// element. next is the layout token that follows the text.
func checkLiteral(text, next string) error {
	if text == "" {
		return nil
	}
	if i := strings.IndexAny(text, "0123456789"); i >= 0 {
		return fmt.Errorf("%w: literal %q contains a digit", ErrUnsupportedPattern, text)
	}
	for _, w := range layoutWords {
		if strings.Contains(text, w) {
			return fmt.Errorf("%w: literal %q contains %q", ErrUnsupportedPattern, text, w)
		}
	}
	if strings.HasSuffix(text, "_") && next == "2" {
		return fmt.Errorf("%w: literal %q before a day reads as _2", ErrUnsupportedPattern, text)
	}
	return nil
}

func isPatternLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// layoutFor maps a run of n identical pattern letters to its Go layout token.
func layoutFor(c rune, n int, written string) (string, error) {
	switch c {
	case 'y', 'u':
		if n == 2 {
			return "06", nil
		}
		return "2006", nil
	case 'M', 'L':
		switch {
		case n >= 4:
			return "January", nil
		case n == 3:
			return "Jan", nil
		case n == 2:
			return "01", nil
		default:
			return "1", nil
		}
	case 'd':
		if n >= 2 {
			return "02", nil
		}
		return "2", nil
	case 'D':
		return "002", nil
	case 'H', 'k':
		return "15", nil
	case 'h', 'K':
		if n >= 2 {
			return "03", nil
		}
		return "3", nil
	case 'm':
		if n >= 2 {
			return "04", nil
		}
		return "4", nil
	case 's':
		if n >= 2 {
			return "05", nil
		}
		return "5", nil
	case 'S':
		if !strings.HasSuffix(written, ".") && !strings.HasSuffix(written, ",") {
			return "", fmt.Errorf("%w: fractional seconds must follow '.' or ','", ErrUnsupportedPattern)
		}
		return strings.Repeat("0", n), nil
	case 'E':
		if n >= 4 {
			return "Monday", nil
		}
		return "Mon", nil
	case 'a':
		return "PM", nil
	case 'z':
		return "MST", nil
	case 'Z':
		return "-0700", nil
	case 'X':
		switch n {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		default:
			return "Z07:00", nil
		}
	}
	return "", fmt.Errorf("%w: letter %q", ErrUnsupportedPattern, c)
}

// FormatDate reparses input from inputPattern and renders it in outputPattern.
// Both patterns use SimpleDateFormat syntax.
func FormatDate(input, inputPattern, outputPattern string) (string, error) {
	in, err := JavaLayout(inputPattern)
	if err != nil {
		return "", err
	}
	out, err := JavaLayout(outputPattern)
	if err != nil {
		return "", err
	}

	t, err := time.Parse(in, input)
	if err != nil {
		logging.Error(context.Background(), "Parse Exception...", err, "input", input, "pattern", inputPattern)
		return "", fmt.Errorf("parse %q as %q: %w", input, inputPattern, err)
	}
	return t.Format(out), nil
}

// FormatNow renders the current local time with a SimpleDateFormat pattern.
func FormatNow(pattern string) (string, error) {
	layout, err := JavaLayout(pattern)
	if err != nil {
		return "", err
	}
	return time.Now().Format(layout), nil
}
