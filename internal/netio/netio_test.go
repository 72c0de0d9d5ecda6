package netio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterPassesThroughWithoutBackpressure(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
	assert.False(t, w.NeedsFlush())
}

// blockingDest accepts n bytes before reporting ErrWouldBlock on every
// further write, simulating a socket that isn't write-ready yet.
type blockingDest struct {
	accept int
	buf    bytes.Buffer
}

func (d *blockingDest) Write(p []byte) (int, error) {
	if d.accept <= 0 {
		return 0, ErrWouldBlock
	}
	n := len(p)
	if n > d.accept {
		n = d.accept
	}
	d.buf.Write(p[:n])
	d.accept -= n
	if n < len(p) {
		return n, ErrWouldBlock
	}
	return n, nil
}

func TestWriterQueuesOnWouldBlockAndFlushesLater(t *testing.T) {
	dest := &blockingDest{accept: 2}
	w := NewWriter(dest)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err) // WouldBlock is swallowed; bytes are queued
	assert.Equal(t, 5, n)
	assert.True(t, w.NeedsFlush())
	assert.Equal(t, "he", dest.buf.String())

	dest.accept = 100
	require.NoError(t, w.Flush())
	assert.False(t, w.NeedsFlush())
	assert.Equal(t, "hello", dest.buf.String())
}

func TestWriterFlushReturnsWouldBlockWhileTailRemains(t *testing.T) {
	dest := &blockingDest{accept: 0}
	w := NewWriter(dest)
	_, _ = w.Write([]byte("abc"))
	err := w.Flush()
	require.ErrorIs(t, err, ErrWouldBlock)
	assert.True(t, w.NeedsFlush())
}

type readWriteCloser struct {
	*bytes.Buffer
	closed bool
}

func (r *readWriteCloser) Close() error {
	r.closed = true
	return nil
}

func TestConnectionReadNextThenWriteResponse(t *testing.T) {
	stream := &readWriteCloser{Buffer: bytes.NewBufferString("GET / HTTP/1.1\r\nHost: h\r\n\r\n")}
	conn := NewConnection(stream)

	req, err := conn.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)

	require.NoError(t, conn.WriteRaw([]byte("HTTP/1.1 404 Not Found\r\n\r\n")))
	assert.Contains(t, stream.Buffer.String(), "404 Not Found")
}

func TestConnectionReadNextCleanClose(t *testing.T) {
	stream := &readWriteCloser{Buffer: bytes.NewBuffer(nil)}
	conn := NewConnection(stream)
	_, err := conn.ReadNext()
	require.True(t, errors.Is(err, ErrCleanClose))
}
