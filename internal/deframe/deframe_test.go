package deframe

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fragmentReader serves data one byte at a time, returning ErrBlocked once
// when the read position reaches blockAt, simulating a message split across
// two non-blocking reactor turns.
type fragmentReader struct {
	data    []byte
	pos     int
	blockAt int
	blocked bool
}

func (f *fragmentReader) Read(p []byte) (int, error) {
	if f.pos == f.blockAt && !f.blocked {
		f.blocked = true
		return 0, ErrBlocked
	}
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:f.pos+1])
	f.pos += n
	return n, nil
}

func TestLineParseAcrossFragments(t *testing.T) {
	r := &fragmentReader{data: []byte("foo\r\n"), blockAt: 3}
	l := NewLine(r)

	_, err := l.Parse()
	require.ErrorIs(t, err, ErrBlocked)

	got, err := l.Parse()
	require.NoError(t, err)
	assert.Equal(t, "foo\r\n", string(got))
}

func TestLineParseCleanCloseBeforeAnyByte(t *testing.T) {
	l := NewLine(bytes.NewReader(nil))
	_, err := l.Parse()
	require.ErrorIs(t, err, io.EOF)
}

func TestLineParseUnexpectedEOFMidLine(t *testing.T) {
	l := NewLine(bytes.NewReader([]byte("partial")))
	_, err := l.Parse()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFixedParse(t *testing.T) {
	f := NewFixed(bytes.NewReader([]byte("hello world")), 5)
	got, err := f.Parse()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestFixedParseUnexpectedEOF(t *testing.T) {
	f := NewFixed(bytes.NewReader([]byte("ab")), 5)
	_, err := f.Parse()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFixedParseZeroWant(t *testing.T) {
	f := NewFixed(bytes.NewReader(nil), 0)
	got, err := f.Parse()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUntilEOFParse(t *testing.T) {
	u := NewUntilEOF(bytes.NewReader([]byte("the rest of the stream")))
	got, err := u.Parse()
	require.NoError(t, err)
	assert.Equal(t, "the rest of the stream", string(got))
}

func TestCrlfLineStripsTerminator(t *testing.T) {
	c := NewCrlfLine(bytes.NewReader([]byte("GET / HTTP/1.1\r\n")))
	line, err := c.Parse()
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1", line)
}

func TestCrlfLineBareLF(t *testing.T) {
	c := NewCrlfLine(bytes.NewReader([]byte("no crlf here\n")))
	_, err := c.Parse()
	require.ErrorIs(t, err, ErrBadSyntax)
}

func TestCrlfLineExceedsMaxLineBytes(t *testing.T) {
	long := bytes.Repeat([]byte("a"), MaxLineBytes+10)
	c := NewCrlfLine(bytes.NewReader(long))
	_, err := c.Parse()
	require.Error(t, err)
}
