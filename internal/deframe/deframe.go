// Package deframe holds the lowest-level incremental accumulators: parsers
// for a single low-level terminator (a line, a fixed byte count, or
// end-of-stream) that yield raw bytes or strings, per spec.md §4.2/§4.3.
//
// Every deframer in this package follows the same resumable shape: it is a
// pointer-receiver struct that owns whatever partial buffer it has
// accumulated so far, and a Parse method that either finishes (returning a
// value and a nil error), blocks (returning ErrBlocked, with the struct's
// state left exactly as it was so a later call can resume), or fails fatally
// (any other error). This mirrors spec.md §4.2's Done/Blocked/Err contract
// as a plain (value, error) pair instead of a bespoke tagged union, which is
// the idiomatic Go rendering of the same contract (see DESIGN.md).
package deframe

import (
	"errors"
	"io"
)

// ErrBlocked is returned by a Parse call (or an underlying source) when no
// more bytes are available right now. The caller must retain the deframer
// and invoke Parse again once more bytes are ready; no bytes are ever
// re-read. This is the Go rendering of spec.md §4.2's `Blocked(self')`.
var ErrBlocked = errors.New("deframe: blocked, call again once more data is available")

// ErrBadSyntax marks a line that violated the delimiter grammar (e.g. a bare
// LF not preceded by CR).
var ErrBadSyntax = errors.New("deframe: bad syntax")

// Line incrementally accumulates bytes up to and including '\n' into a
// UTF-8 string (spec.md §2 "LineDeframer").
type Line struct {
	src io.Reader
	buf []byte
	one [1]byte
}

// NewLine wraps src; each byte is read one at a time so that not a single
// byte of lookahead past the terminator is ever consumed, matching spec.md
// §3's "no lookahead is retained" invariant.
func NewLine(src io.Reader) *Line {
	return &Line{src: src}
}

// Parse drains src until '\n' is seen. On success it returns the
// accumulated bytes including the trailing '\n'. If src hits end-of-stream
// with nothing accumulated yet, io.EOF is returned verbatim (the "clean
// close" signal higher layers may special-case). If src hits end-of-stream
// after partial accumulation, io.ErrUnexpectedEOF is returned. ErrBlocked
// propagates unchanged so the caller can resume later.
func (l *Line) Parse() ([]byte, error) {
	for {
		n, err := l.src.Read(l.one[:])
		if n == 1 {
			l.buf = append(l.buf, l.one[0])
			if l.one[0] == '\n' {
				return l.buf, nil
			}
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, ErrBlocked) {
			return nil, ErrBlocked
		}
		if errors.Is(err, io.EOF) {
			if len(l.buf) == 0 {
				return nil, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
}

// Fixed fills a pre-sized buffer with exactly N bytes (spec.md §2
// "FixedBytesDeframer").
type Fixed struct {
	src  io.Reader
	buf  []byte
	want int
}

// NewFixed wraps src, demanding exactly n bytes.
func NewFixed(src io.Reader, n int) *Fixed {
	return &Fixed{src: src, buf: make([]byte, 0, n), want: n}
}

// Parse returns the n accumulated bytes once all have arrived.
func (f *Fixed) Parse() ([]byte, error) {
	for len(f.buf) < f.want {
		tmp := make([]byte, f.want-len(f.buf))
		n, err := f.src.Read(tmp)
		if n > 0 {
			f.buf = append(f.buf, tmp[:n]...)
		}
		if err != nil {
			if errors.Is(err, ErrBlocked) {
				return nil, ErrBlocked
			}
			if errors.Is(err, io.EOF) {
				if len(f.buf) == 0 && f.want > 0 {
					return nil, io.ErrUnexpectedEOF
				}
				if len(f.buf) < f.want {
					return nil, io.ErrUnexpectedEOF
				}
				break
			}
			return nil, err
		}
	}
	return f.buf, nil
}

// UntilEOF accumulates all bytes until the source reports a clean
// end-of-stream (spec.md §2 "UntilEofDeframer"). Unlike Line/Fixed, a true
// io.EOF here is the expected terminator, not a failure.
type UntilEOF struct {
	src io.Reader
	buf []byte
}

// NewUntilEOF wraps src.
func NewUntilEOF(src io.Reader) *UntilEOF {
	return &UntilEOF{src: src}
}

// Parse drains src until io.EOF, returning everything accumulated so far.
func (u *UntilEOF) Parse() ([]byte, error) {
	tmp := make([]byte, 4096)
	for {
		n, err := u.src.Read(tmp)
		if n > 0 {
			u.buf = append(u.buf, tmp[:n]...)
		}
		if err != nil {
			if errors.Is(err, ErrBlocked) {
				return nil, ErrBlocked
			}
			if errors.Is(err, io.EOF) {
				return u.buf, nil
			}
			return nil, err
		}
	}
}
