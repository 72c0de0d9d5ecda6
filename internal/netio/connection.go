package netio

import (
	"bufio"
	"errors"
	"io"

	"github.com/darrenkoch/httpstack/internal/message"
)

// ErrCleanClose is returned by ReadNext when the peer closed the stream
// before sending any byte of a new message — not an error condition, just
// the signal to close quietly (spec.md §4.8, §7).
var ErrCleanClose = errors.New("netio: clean close")

// Connection owns a single TCP/TLS byte stream, a buffered reader, the
// non-blocking buffered Writer, and a reusable message.RequestParser
// (spec.md §4.9). It is used on the server side; the client's simpler
// per-slot protocol lives in internal/client instead (spec.md §4.13
// doesn't need the full read/parse/route/write pipeline this type drives).
//
// Generalizes the teacher's server.handle, which rebuilt its whole
// read/parse loop (via request.RequestFromReader) for every accepted
// socket; here the buffered reader and Writer are allocated once and the
// MessageParser is swapped out (not the Connection) after each message, so
// both buffers are reused across a connection's entire pipelined lifetime
// per spec.md §3's Connection lifecycle.
type Connection struct {
	stream io.ReadWriteCloser
	reader *bufio.Reader
	Writer *Writer
	parser *message.RequestParser
}

// NewConnection wraps stream with a 4096-byte buffered reader (spec.md
// §4.9 default) and a fresh RequestParser.
func NewConnection(stream io.ReadWriteCloser) *Connection {
	r := bufio.NewReaderSize(stream, 4096)
	return &Connection{
		stream: stream,
		reader: r,
		Writer: NewWriter(stream),
		parser: message.NewRequestParser(r),
	}
}

// ReadNext advances the current MessageParser until it yields a Request,
// blocks, or fails. On success it immediately arms a fresh parser for the
// next pipelined request on this same stream (spec.md §4.8).
//
//   - (req, nil): a full request was parsed; call ReadNext again for the
//     next pipelined request once this one's response has been written.
//   - (nil, ErrCleanClose): peer closed between messages; close quietly.
//   - (nil, err): a fatal protocol or I/O error; close the connection.
func (c *Connection) ReadNext() (*message.Request, error) {
	req, err := c.parser.Parse()
	if err != nil {
		if message.IsCleanClose(err) {
			return nil, ErrCleanClose
		}
		return nil, err
	}
	c.parser = message.NewRequestParser(c.reader)
	return req, nil
}

// WriteResponse serializes resp and flushes it to the stream.
func (c *Connection) WriteResponse(resp *message.Response) error {
	s := message.NewSerializer(c.Writer)
	if err := s.WriteResponse(resp); err != nil {
		return err
	}
	return c.Flush()
}

// WriteRaw writes pre-serialized bytes directly (used for the canned 400/404
// responses, which are fixed byte strings per spec.md §6).
func (c *Connection) WriteRaw(b []byte) error {
	if _, err := c.Writer.Write(b); err != nil {
		return err
	}
	return c.Flush()
}

// Flush drains the buffered writer. Callers should retry on ErrWouldBlock
// once the stream is write-ready again.
func (c *Connection) Flush() error {
	return c.Writer.Flush()
}

// FlushNeeded reports whether the Writer still holds unwritten bytes —
// spec.md §4.9's "needs_flush" / §9's TLS caveat. The underlying stream is
// not consulted: crypto/tls's Conn.Write already blocks until the full
// record is written to the OS, so there is no separate "TLS has buffered
// ciphertext" probe; the Writer's tail is the one layer that can report
// pending output.
func (c *Connection) FlushNeeded() bool {
	return c.Writer.NeedsFlush()
}

// Close tears down the underlying stream.
func (c *Connection) Close() error {
	return c.stream.Close()
}
