package body

import (
	"errors"
	"io"
	"strconv"

	"github.com/darrenkoch/httpstack/internal/deframe"
)

// ErrInvalidChunkSize marks a non-hex or over-limit chunk size line
// (spec.md §4.6).
var ErrInvalidChunkSize = errors.New("body: invalid chunk size")

type chunkState int

const (
	chunkAwaitingSize chunkState = iota
	chunkAwaitingData
	chunkAwaitingTrailingCRLF
	chunkDone
)

// Chunk implements the chunked transfer-encoding state machine from
// spec.md §4.6, adapted from intuitivelabs-httpsp's ParseChunk/ChunkVal
// (same offset-resumable shape, hex size, explicit state field) but
// simplified to HTTP's plain-CRLF trailer (no trailer headers, per the
// spec's Non-goals) instead of SIP's trailer-header variant.
type Chunk struct {
	src io.Reader

	state     chunkState
	sizeLine  *deframe.CrlfLine
	remaining int64
	chunkBuf  *deframe.Fixed
	trailer   *deframe.CrlfLine
	isLast    bool

	accumulated []byte
}

// NewChunk wraps src. Cumulative size enforcement against MaxBodyBytes is
// the caller's job (body.go wraps src in a limit.Reader); Chunk only
// rejects a single chunk-size line that exceeds MaxBodyBytes outright.
func NewChunk(src io.Reader) *Chunk {
	return &Chunk{src: src}
}

// Parse drives the state machine to completion, returning the fully
// decoded body once the zero-length terminator chunk and its trailing
// empty line have both been consumed.
func (c *Chunk) Parse() ([]byte, error) {
	for {
		switch c.state {
		case chunkAwaitingSize:
			if c.sizeLine == nil {
				c.sizeLine = deframe.NewCrlfLine(c.src)
			}
			line, err := c.sizeLine.Parse()
			if err != nil {
				if errors.Is(err, deframe.ErrBlocked) {
					return nil, deframe.ErrBlocked
				}
				if errors.Is(err, io.EOF) {
					return nil, io.ErrUnexpectedEOF
				}
				return nil, err
			}
			c.sizeLine = nil

			size, err := strconv.ParseInt(line, 16, 64)
			if err != nil || size < 0 {
				return nil, ErrInvalidChunkSize
			}
			if size > MaxBodyBytes {
				return nil, ErrInvalidChunkSize
			}
			c.remaining = size
			c.isLast = size == 0
			c.state = chunkAwaitingData

		case chunkAwaitingData:
			if c.chunkBuf == nil {
				c.chunkBuf = deframe.NewFixed(c.src, int(c.remaining))
			}
			data, err := c.chunkBuf.Parse()
			if err != nil {
				if errors.Is(err, deframe.ErrBlocked) {
					return nil, deframe.ErrBlocked
				}
				if errors.Is(err, io.EOF) {
					return nil, io.ErrUnexpectedEOF
				}
				return nil, err
			}
			c.chunkBuf = nil
			c.accumulated = append(c.accumulated, data...)
			c.state = chunkAwaitingTrailingCRLF

		case chunkAwaitingTrailingCRLF:
			if c.trailer == nil {
				c.trailer = deframe.NewCrlfLine(c.src)
			}
			line, err := c.trailer.Parse()
			if err != nil {
				if errors.Is(err, deframe.ErrBlocked) {
					return nil, deframe.ErrBlocked
				}
				if errors.Is(err, io.EOF) {
					return nil, io.ErrUnexpectedEOF
				}
				return nil, err
			}
			c.trailer = nil
			if line != "" {
				return nil, deframe.ErrBadSyntax
			}
			if c.isLast {
				c.state = chunkDone
				return c.accumulated, nil
			}
			c.state = chunkAwaitingSize

		case chunkDone:
			return c.accumulated, nil
		}
	}
}
