package deframe

import (
	"io"

	"github.com/darrenkoch/httpstack/internal/limit"
)

// MaxLineBytes is the per-line cap from spec.md §3/§6 (512 bytes including
// the terminating CRLF).
const MaxLineBytes = 512

// CrlfLine drains bytes into a Line accumulator until it sees '\n', then
// requires the preceding byte to be '\r' (spec.md §2 "CrlfLineParser",
// §4.3). The whole line, including CRLF, is capped at MaxLineBytes via a
// limit.Reader wrapped around src once at construction so the budget
// persists across Blocked resumptions.
type CrlfLine struct {
	limited *limit.Reader
	line    *Line
}

// NewCrlfLine wraps src with the 512-byte cap and prepares a fresh Line.
func NewCrlfLine(src io.Reader) *CrlfLine {
	lr := limit.New(src, MaxLineBytes)
	return &CrlfLine{limited: lr, line: NewLine(lr)}
}

// Parse returns the line's content with the trailing CRLF stripped.
//
//   - io.EOF: the source ended with nothing consumed for this line yet (a
//     clean close, if this is the very first line of a message).
//   - io.ErrUnexpectedEOF: the source ended mid-line.
//   - limit.ErrReadLimitReached: the line exceeded MaxLineBytes.
//   - ErrBadSyntax: the line ended in a bare '\n' not preceded by '\r'.
//   - ErrBlocked: call Parse again once more bytes are available.
func (c *CrlfLine) Parse() (string, error) {
	raw, err := c.line.Parse()
	if err != nil {
		return "", err
	}
	if len(raw) < 2 || raw[len(raw)-2] != '\r' {
		return "", ErrBadSyntax
	}
	return string(raw[:len(raw)-2]), nil
}
