// Package body implements spec.md §4.5/§4.6: selecting one of the four body
// modes from the just-parsed headers and driving the matching deframer(s),
// capped at 3 MiB.
package body

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/darrenkoch/httpstack/internal/deframe"
	"github.com/darrenkoch/httpstack/internal/headers"
	"github.com/darrenkoch/httpstack/internal/limit"
)

// MaxBodyBytes is the cap from spec.md §3/§6, shared by sized, chunked and
// until-eof bodies alike.
const MaxBodyBytes = 3 * 1024 * 1024

var (
	// ErrContentLengthTooLarge marks a content-length header above MaxBodyBytes.
	ErrContentLengthTooLarge = errors.New("body: content-length exceeds limit")
	// ErrInvalidHeaderValue marks a non-numeric or negative content-length.
	ErrInvalidHeaderValue = errors.New("body: invalid header value")
)

// Mode is the body-framing mode selected from headers (spec.md §3 "BodyMode").
type Mode int

const (
	ModeEmpty Mode = iota
	ModeSized
	ModeChunked
	ModeUntilEOF
)

// Parser selects a Mode from the request/response headers and drives the
// corresponding deframer. ReadUntilEOF must be true for responses and false
// for requests (spec.md §4.5 rule 3).
type Parser struct {
	mode     Mode
	sized    *deframe.Fixed
	chunk    *Chunk
	untilEOF *deframe.UntilEOF
}

// NewParser inspects h and constructs the parser for whichever mode applies.
// Mode-selection errors (a too-large or malformed content-length) are
// returned immediately, before a single body byte is read, matching spec.md
// §8 scenario 6.
func NewParser(h *headers.Map, src io.Reader, readUntilEOF bool) (*Parser, error) {
	if cl, ok := h.GetString("content-length"); ok {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, ErrInvalidHeaderValue
		}
		if n > MaxBodyBytes {
			return nil, ErrContentLengthTooLarge
		}
		lr := limit.New(src, MaxBodyBytes)
		return &Parser{mode: ModeSized, sized: deframe.NewFixed(lr, int(n))}, nil
	}

	if te, ok := h.GetString("transfer-encoding"); ok && te == "chunked" {
		lr := limit.New(src, MaxBodyBytes)
		return &Parser{mode: ModeChunked, chunk: NewChunk(lr)}, nil
	}

	if readUntilEOF {
		lr := limit.New(src, MaxBodyBytes)
		return &Parser{mode: ModeUntilEOF, untilEOF: deframe.NewUntilEOF(lr)}, nil
	}

	return &Parser{mode: ModeEmpty}, nil
}

// Parse drives the selected mode to completion, returning the decoded body.
func (p *Parser) Parse() ([]byte, error) {
	switch p.mode {
	case ModeEmpty:
		return []byte{}, nil
	case ModeSized:
		return p.sized.Parse()
	case ModeChunked:
		return p.chunk.Parse()
	case ModeUntilEOF:
		return p.untilEOF.Parse()
	default:
		return nil, fmt.Errorf("body: unknown mode %d", p.mode)
	}
}
