package excel

// reader.go cleans CSV byte streams before encoding/csv sees them:
//
//   - a UTF-8 BOM written by Windows tools is dropped
//   - invalid UTF-8 bytes become '?'
//
// Both happen while streaming, so large exports never sit fully in memory.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanReader yields the valid UTF-8 text of an underlying reader.
type cleanReader struct {
	r          *bufio.Reader
	bomChecked bool
}

func newCleanReader(r io.Reader) *cleanReader {
	return &cleanReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (c *cleanReader) Read(p []byte) (int, error) {
	if !c.bomChecked {
		c.bomChecked = true
		if head, _ := c.r.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			c.r.Discard(len(utf8BOM))
		}
	}

	n := 0
	for n+utf8.UTFMax <= len(p) {
		r, size, err := c.r.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}
		n += utf8.EncodeRune(p[n:], r)

		// hand back what we have rather than block on the next rune
		if c.r.Buffered() == 0 {
			break
		}
	}

	// p too small for a full rune
	if n == 0 {
		var buf [utf8.UTFMax]byte
		r, size, err := c.r.ReadRune()
		if err != nil {
			return 0, err
		}
		if r == utf8.RuneError && size == 1 {
			p[0] = '?'
			return 1, nil
		}
		w := utf8.EncodeRune(buf[:], r)
		if w > len(p) {
			c.r.UnreadRune()
			return 0, io.ErrShortBuffer
		}
		return copy(p, buf[:w]), nil
	}
	return n, nil
}
