package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the ambient observability surface this stack carries even
// though spec.md's Non-goals never mention metrics/observability as a
// feature to exclude (SPEC_FULL.md §2, §4). Grounded on
// github.com/prometheus/client_golang, the dependency
// MiraiMindz-watt/bolt wires into its own HTTP stack.
type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	ConnectionsClosed   *prometheus.CounterVec
	BytesParsed         prometheus.Counter // registered, but nothing in this package increments it
	RequestsServed      *prometheus.CounterVec
	HandlerQueueDepth   prometheus.Gauge
}

// NewMetrics registers every collector against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests), or
// prometheus.DefaultRegisterer to expose on the global /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConnectionsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "httpstack_connections_accepted_total",
			Help: "Total TCP/TLS connections accepted.",
		}),
		ConnectionsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "httpstack_connections_closed_total",
			Help: "Connections closed, by reason.",
		}, []string{"reason"}),
		BytesParsed: f.NewCounter(prometheus.CounterOpts{
			Name: "httpstack_bytes_parsed_total",
			Help: "Bytes consumed by the message parser.",
		}),
		RequestsServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "httpstack_requests_served_total",
			Help: "Requests served, by response status class.",
		}, []string{"status_class"}),
		HandlerQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "httpstack_handler_queue_depth",
			Help: "Handler invocations currently waiting on the worker pool.",
		}),
	}
}

// statusClass buckets a status code as Prometheus label cardinality demands
// ("2xx", "4xx", ...) rather than one series per exact code.
func statusClass(code uint16) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
