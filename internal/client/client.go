// Package client implements the pooled HTTP/1.1 client from spec.md §4.13,
// a fixed-size array of reusable connections rather than the unbounded,
// auto-scaling connection cache badu-http's tport.Transport/persistConn
// keep per host. Every slot owns its own net.Conn, message.Serializer
// target and bufio-buffered reader; acquiring a slot is a try-lock sweep
// followed by a blocking wait on the first slot, per spec.md §4.13/§5.
package client

import (
	"bufio"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/darrenkoch/httpstack/internal/headers"
	"github.com/darrenkoch/httpstack/internal/message"
)

// Config enumerates the client options from spec.md §6/§9.
type Config struct {
	Addr           string
	NumConnections int
	ReadTimeout    time.Duration
	TLSConfig      *tls.Config
}

// slot is one reusable connection. A nil stream means "not yet dialed" —
// Do dials lazily on first use and again whenever a prior round-trip
// failed or the server told it to drop the connection
// (SPEC_FULL.md §9's "Connection: close on the response" rule, adapted
// from the original's src/client/client.rs).
type slot struct {
	mu     sync.Mutex
	stream net.Conn
	reader *bufio.Reader
}

// Client is a bounded pool of persistent connections to one address,
// generalizing badu-http's persistConn (shouldRetryRequest / redial on a
// dead connection) down to the single-host, no-HTTP/2, no-proxy case
// spec.md needs.
type Client struct {
	cfg   Config
	slots []*slot
}

// New returns a Client with cfg.NumConnections slots, none of them dialed
// yet (spec.md §4.13: dialing happens lazily on first Do).
func New(cfg Config) *Client {
	if cfg.NumConnections < 1 {
		cfg.NumConnections = 1
	}
	slots := make([]*slot, cfg.NumConnections)
	for i := range slots {
		slots[i] = &slot{}
	}
	return &Client{cfg: cfg, slots: slots}
}

// acquire sweeps the slots for one that isn't currently locked, trying each
// in turn; if every slot is busy it blocks on slot 0, matching spec.md
// §4.13's "try every slot once, then wait on the first" acquisition order.
func (c *Client) acquire() *slot {
	for _, s := range c.slots {
		if s.mu.TryLock() {
			return s
		}
	}
	s := c.slots[0]
	s.mu.Lock()
	return s
}

// Do sends req and returns the parsed response, dialing or redialing the
// acquired slot's stream as needed.
func (c *Client) Do(req *message.Request) (*message.Response, error) {
	if _, ok := req.Headers.GetString("host"); !ok {
		return nil, ErrMissingHost
	}

	s := c.acquire()
	defer s.mu.Unlock()

	if s.stream == nil {
		if err := c.dial(s); err != nil {
			return nil, err
		}
	}

	if c.cfg.ReadTimeout > 0 {
		_ = s.stream.SetDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}

	ser := message.NewSerializer(s.stream)
	if err := ser.WriteRequest(req); err != nil {
		// The peer may have closed an idle persistent connection out from
		// under us; redial once before giving up, mirroring badu-http's
		// shouldRetryRequest for a connection that was reused (not fresh).
		if redialErr := c.dial(s); redialErr != nil {
			return nil, redialErr
		}
		// s.stream was replaced by dial; the old Serializer still points at
		// the closed connection and must not be reused for the retry.
		ser = message.NewSerializer(s.stream)
		if err := ser.WriteRequest(req); err != nil {
			return nil, err
		}
	}

	parser := message.NewResponseParser(s.reader)
	resp, err := readFull(parser)
	if err != nil {
		_ = s.stream.Close()
		s.stream = nil
		return nil, err
	}

	if responseWantsClose(resp) {
		_ = s.stream.Close()
		s.stream = nil
	}
	return resp, nil
}

// readFull drives parser.Parse, re-calling it across deframe.ErrBlocked the
// way a real non-blocking reactor would wait for readiness — here the
// underlying bufio.Reader simply blocks on the next Read instead, since a
// synchronous client has no event loop to yield to (SPEC_FULL.md §1).
func readFull(parser *message.ResponseParser) (*message.Response, error) {
	for {
		resp, err := parser.Parse()
		if err == nil {
			return resp, nil
		}
		if message.IsBlocked(err) {
			continue
		}
		return nil, err
	}
}

// responseWantsClose reports whether resp carries Connection: close,
// meaning this slot's stream must not be reused (SPEC_FULL.md §9).
func responseWantsClose(resp *message.Response) bool {
	v, ok := resp.Headers.GetString("connection")
	return ok && v == "close"
}

func (c *Client) dial(s *slot) error {
	if s.stream != nil {
		_ = s.stream.Close()
	}
	var conn net.Conn
	var err error
	if c.cfg.TLSConfig != nil {
		conn, err = tls.Dial("tcp", c.cfg.Addr, c.cfg.TLSConfig)
	} else {
		conn, err = net.Dial("tcp", c.cfg.Addr)
	}
	if err != nil {
		return err
	}
	s.stream = conn
	s.reader = bufio.NewReaderSize(conn, 4096)
	return nil
}

// Close tears down every dialed slot.
func (c *Client) Close() error {
	var firstErr error
	for _, s := range c.slots {
		s.mu.Lock()
		if s.stream != nil {
			if err := s.stream.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			s.stream = nil
		}
		s.mu.Unlock()
	}
	return firstErr
}

// NewRequest builds a minimal request with a Host header set from
// addr, the one piece of bookkeeping spec.md §4.13 requires every
// client request to carry.
func NewRequest(addr, method, target string, body []byte) *message.Request {
	h := headers.NewMap()
	h.Add(headers.NewName([]byte("host")), addr)
	if len(body) > 0 {
		h.Add(headers.NewName([]byte("content-length")), strconv.Itoa(len(body)))
	}
	return &message.Request{Method: method, Target: target, Headers: h, Body: body}
}

var _ io.Closer = (*Client)(nil)

// ErrMissingHost mirrors the original's client-side validation: Do rejects
// any request without a Host header before it ever touches a slot. Requests
// built via NewRequest always carry one; this guards callers that build a
// Request by hand and skip it.
var ErrMissingHost = errors.New("client: request missing Host header")
