package firstline

import (
	"bytes"
	"io"
	"testing"

	"github.com/darrenkoch/httpstack/internal/deframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLineParserValid(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader([]byte("GET /path HTTP/1.1\r\n")))
	rl, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, RequestLine{Method: "GET", Target: "/path", Version: HTTPVersion}, rl)
}

func TestRequestLineParserRejectsUnknownMethod(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader([]byte("PATCH / HTTP/1.1\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, ErrUnrecognizedMethod)
}

func TestRequestLineParserRejectsWrongVersion(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader([]byte("GET / HTTP/1.0\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, ErrWrongHTTPVersion)
}

func TestRequestLineParserRejectsMalformed(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader([]byte("GET /only-two-tokens\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, deframe.ErrBadSyntax)
}

func TestRequestLineParserCleanCloseBeforeAnyByte(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader(nil))
	_, err := p.Parse()
	require.ErrorIs(t, err, io.EOF)
}

func TestRequestLineParserVersionIsCaseSensitive(t *testing.T) {
	p := NewRequestLineParser(bytes.NewReader([]byte("GET / http/1.1\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, ErrWrongHTTPVersion)
}

func TestStatusLineParserValid(t *testing.T) {
	p := NewStatusLineParser(bytes.NewReader([]byte("HTTP/1.1 404 Not Found\r\n")))
	sl, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, 404, sl.Code)
}

func TestStatusLineParserRejectsNonNumericCode(t *testing.T) {
	p := NewStatusLineParser(bytes.NewReader([]byte("HTTP/1.1 OK Not Found\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, ErrInvalidStatusCode)
}

func TestStatusLineParserRejectsOverflowCode(t *testing.T) {
	p := NewStatusLineParser(bytes.NewReader([]byte("HTTP/1.1 99999999 Huh\r\n")))
	_, err := p.Parse()
	require.ErrorIs(t, err, ErrInvalidStatusCode)
}
