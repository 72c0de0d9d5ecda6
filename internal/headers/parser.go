// Package headers implements the interned header-name model (spec.md §3)
// and the resumable HeadersParser (spec.md §2/§4.4).
package headers

import (
	"errors"
	"io"
	"strings"

	"github.com/darrenkoch/httpstack/internal/deframe"
	"github.com/darrenkoch/httpstack/internal/limit"
)

// MaxHeaderBytes is the cumulative cap from spec.md §3/§6: the sum of every
// byte consumed across the whole header block (names, values, delimiters).
const MaxHeaderBytes = 4096

// ErrMalformedHeaderLine marks a header line missing the literal ": "
// separator required by spec.md §4.4.
var ErrMalformedHeaderLine = errors.New("headers: malformed header line")

// Parser loops CrlfLine parses and accumulates a Map, stopping at the first
// empty line. The whole block is wrapped once in a limit.Reader so the
// 4096-byte cumulative cap (spec.md §4.4) persists across every line and
// across Blocked resumptions, exactly as a fresh CrlfLine's own 512-byte cap
// persists for a single in-progress line.
type Parser struct {
	limited *limit.Reader
	cur     *deframe.CrlfLine
	out     *Map
}

// NewParser wraps src with the cumulative header-block budget.
func NewParser(src io.Reader) *Parser {
	return &Parser{limited: limit.New(src, MaxHeaderBytes), out: NewMap()}
}

// Parse drains lines until the blank line terminating the header block,
// returning the accumulated Map. Errors propagate per deframe.CrlfLine's
// contract; in particular an io.EOF from an underlying CrlfLine (which would
// mean "clean close" to a first-line parser) is never clean here — headers
// only ever see it mid-message, so it is translated to io.ErrUnexpectedEOF.
func (p *Parser) Parse() (*Map, error) {
	for {
		if p.cur == nil {
			p.cur = deframe.NewCrlfLine(p.limited)
		}
		line, err := p.cur.Parse()
		if err != nil {
			if errors.Is(err, deframe.ErrBlocked) {
				return nil, deframe.ErrBlocked
			}
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		p.cur = nil

		if line == "" {
			return p.out, nil
		}

		if err := p.addLine(line); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) addLine(line string) error {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return ErrMalformedHeaderLine
	}
	name := NewName([]byte(line[:idx]))
	value := line[idx+2:]
	p.out.Add(name, value)
	return nil
}
