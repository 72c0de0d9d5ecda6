// Package firstline implements spec.md §4.7: the request-line and
// status-line parsers, generalized from the teacher's
// internal/request.ParseRequestLine (token split, method table, version
// literal check) into the resumable deframer-backed shape the rest of this
// stack uses, and extended with the status-line counterpart the teacher
// never had.
package firstline

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/darrenkoch/httpstack/internal/deframe"
)

// HTTPVersion is the only version this stack speaks.
const HTTPVersion = "HTTP/1.1"

var (
	// ErrUnrecognizedMethod marks a request-line token 1 outside the
	// closed method set (spec.md §3: GET, POST, PUT, DELETE).
	ErrUnrecognizedMethod = errors.New("firstline: unrecognized method")
	// ErrWrongHTTPVersion marks a version token that isn't HTTP/1.1.
	ErrWrongHTTPVersion = errors.New("firstline: wrong http version")
	// ErrInvalidStatusCode marks an out-of-table or non-numeric status code.
	ErrInvalidStatusCode = errors.New("firstline: invalid status code")
	// ErrBadSyntax marks a first line that doesn't split into the right
	// number of space-separated tokens, or a non-UTF8 request target.
	ErrBadSyntax = deframe.ErrBadSyntax
)

var allowedMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {},
}

// RequestLine is the parsed (method, target, version) triple.
type RequestLine struct {
	Method  string
	Target  string
	Version string
}

// RequestLineParser wraps a CrlfLine and yields a RequestLine.
type RequestLineParser struct {
	line *deframe.CrlfLine
}

// NewRequestLineParser wraps src.
func NewRequestLineParser(src io.Reader) *RequestLineParser {
	return &RequestLineParser{line: deframe.NewCrlfLine(src)}
}

// Parse reads one CRLF-terminated line and validates it as a request line.
// An io.EOF with nothing consumed propagates unchanged — this is how the
// server/client recognize a cleanly closed connection between messages
// (spec.md §4.7, §4.8).
func (p *RequestLineParser) Parse() (RequestLine, error) {
	text, err := p.line.Parse()
	if err != nil {
		return RequestLine{}, err
	}

	tokens := bytes.Fields([]byte(text))
	if len(tokens) < 3 {
		return RequestLine{}, deframe.ErrBadSyntax
	}
	method, target, version := tokens[0], tokens[1], tokens[2]

	if _, ok := allowedMethods[string(method)]; !ok {
		return RequestLine{}, ErrUnrecognizedMethod
	}
	if !bytes.Equal(version, []byte(HTTPVersion)) {
		return RequestLine{}, ErrWrongHTTPVersion
	}
	if !utf8.Valid(target) {
		return RequestLine{}, deframe.ErrBadSyntax
	}

	return RequestLine{
		Method:  string(method),
		Target:  string(target),
		Version: HTTPVersion,
	}, nil
}

// StatusLine holds the parsed status code (the version token is only
// checked, not stored); Reason is filled from the
// closed status table, never from the wire (spec.md §4.7).
type StatusLine struct {
	Code int
}

// StatusLineParser wraps a CrlfLine and yields a StatusLine.
type StatusLineParser struct {
	line *deframe.CrlfLine
}

// NewStatusLineParser wraps src.
func NewStatusLineParser(src io.Reader) *StatusLineParser {
	return &StatusLineParser{line: deframe.NewCrlfLine(src)}
}

// Parse reads one CRLF-terminated line and validates it as a status line.
func (p *StatusLineParser) Parse() (StatusLine, error) {
	text, err := p.line.Parse()
	if err != nil {
		return StatusLine{}, err
	}

	tokens := bytes.Fields([]byte(text))
	if len(tokens) < 2 {
		return StatusLine{}, deframe.ErrBadSyntax
	}
	version, codeTok := tokens[0], tokens[1]

	if !bytes.Equal(version, []byte(HTTPVersion)) {
		return StatusLine{}, ErrWrongHTTPVersion
	}

	code := 0
	for _, b := range codeTok {
		if b < '0' || b > '9' {
			return StatusLine{}, ErrInvalidStatusCode
		}
		code = code*10 + int(b-'0')
		if code > 65535 {
			return StatusLine{}, ErrInvalidStatusCode
		}
	}
	return StatusLine{Code: code}, nil
}
