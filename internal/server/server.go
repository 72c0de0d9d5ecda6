package server

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/darrenkoch/httpstack/internal/message"
	"github.com/darrenkoch/httpstack/internal/netio"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// CannedBadRequest and CannedNotFound are the exact wire bytes spec.md §6
// requires for protocol failures and unmatched routes — written raw via
// Connection.WriteRaw, bypassing the Serializer entirely since neither
// carries headers or a body.
var (
	CannedBadRequest = []byte("HTTP/1.1 400 Bad Request\r\n\r\n")
	CannedNotFound   = []byte("HTTP/1.1 404 Not Found\r\n\r\n")
)

// Config enumerates the server options from spec.md §6.
type Config struct {
	Addr                     string
	ConnectionHandlerThreads int
	ReadTimeout              time.Duration // per-connection idle deadline, refreshed before each ReadNext; 0 disables
	TLSConfig                *tls.Config
	Router                   *Router
	MetricsRegisterer        prometheus.Registerer // defaults to prometheus.DefaultRegisterer
	AccessLogOutput          io.Writer              // defaults to os.Stdout
}

// Server is the acceptor loop from spec.md §4.11, generalized from the
// teacher's server.Server/Serve/listen/handle. Per SPEC_FULL.md §1, the
// idiomatic Go rendering of the original's hand-rolled epoll reactor is
// one goroutine per accepted connection: the runtime's netpoller already
// makes a blocked Read non-blocking at the OS-thread level, so there is no
// separate poll-registration step to hand-write. The Router is read-only
// and shared across every connection's goroutine without locking, per
// spec.md §5.
type Server struct {
	cfg      Config
	listener net.Listener
	closed   atomic.Bool
	pool     *Pool
	metrics  *Metrics
	access   *accessLogger
}

// Serve starts listening on cfg.Addr (wrapped in TLS if cfg.TLSConfig is
// set) and accepts connections on a background goroutine, mirroring the
// teacher's Serve(port, handler) entry point.
func Serve(cfg Config) (*Server, error) {
	if cfg.Router == nil {
		return nil, errors.New("server: Config.Router is required")
	}
	if cfg.ConnectionHandlerThreads < 1 {
		cfg.ConnectionHandlerThreads = 1
	}
	if cfg.AccessLogOutput == nil {
		cfg.AccessLogOutput = os.Stdout
	}

	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}
	if cfg.TLSConfig != nil {
		l = tls.NewListener(l, cfg.TLSConfig)
	}

	reg := cfg.MetricsRegisterer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &Server{
		cfg:      cfg,
		listener: l,
		pool:     NewPool(cfg.ConnectionHandlerThreads),
		metrics:  NewMetrics(reg),
		access:   newAccessLogger(cfg.AccessLogOutput),
	}
	go s.listen()
	return s, nil
}

// Addr reports the listener's bound address, useful when Config.Addr used
// port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting new connections. It is idempotent.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) listen() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		s.metrics.ConnectionsAccepted.Inc()
		go s.handle(conn)
	}
}

// handle drives one connection's entire pipelined lifetime: read, route
// through the pool, write, repeat. Dispatching the handler through
// Pool.Run bounds concurrent handler execution without reordering
// responses, because this goroutine never issues the next ReadNext until
// the current response has been fully computed and written (spec.md
// §4.11's serial-per-connection guarantee).
func (s *Server) handle(raw net.Conn) {
	defer raw.Close()

	remote, _, _ := net.SplitHostPort(raw.RemoteAddr().String())
	requestID := uuid.NewString()
	conn := netio.NewConnection(raw)

	for {
		start := time.Now()
		if s.cfg.ReadTimeout > 0 {
			_ = raw.SetReadDeadline(start.Add(s.cfg.ReadTimeout))
		}
		req, err := conn.ReadNext()
		if err != nil {
			if errors.Is(err, netio.ErrCleanClose) {
				s.metrics.ConnectionsClosed.WithLabelValues("clean").Inc()
				return
			}
			s.metrics.ConnectionsClosed.WithLabelValues("protocol-error").Inc()
			_ = conn.WriteRaw(CannedBadRequest)
			s.access.logError(requestID, remote, time.Since(start), err)
			return
		}

		var resp *message.Response
		var matched bool
		s.metrics.HandlerQueueDepth.Inc()
		s.pool.Run(func() {
			s.metrics.HandlerQueueDepth.Dec()
			resp, matched = s.cfg.Router.Route(req)
		})

		if !matched {
			if err := conn.WriteRaw(CannedNotFound); err != nil {
				s.metrics.ConnectionsClosed.WithLabelValues("io-error").Inc()
				return
			}
			s.metrics.RequestsServed.WithLabelValues("4xx").Inc()
			s.access.logRequest(requestID, remote, req.Method, req.Target, 404, time.Since(start), 0)
			if req.Close() {
				s.metrics.ConnectionsClosed.WithLabelValues("connection-close").Inc()
				return
			}
			continue
		}

		if err := conn.WriteResponse(resp); err != nil {
			s.metrics.ConnectionsClosed.WithLabelValues("io-error").Inc()
			return
		}
		s.metrics.RequestsServed.WithLabelValues(statusClass(resp.Status.Code)).Inc()
		s.access.logRequest(requestID, remote, req.Method, req.Target, int(resp.Status.Code), time.Since(start), len(resp.Body))

		if req.Close() || resp.Close() {
			s.metrics.ConnectionsClosed.WithLabelValues("connection-close").Inc()
			return
		}
	}
}
