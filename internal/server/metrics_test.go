package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ConnectionsAccepted.Inc()
	m.ConnectionsClosed.WithLabelValues("clean").Inc()
	m.RequestsServed.WithLabelValues("2xx").Inc()
	m.HandlerQueueDepth.Set(3)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestStatusClassBuckets(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(500))
}
