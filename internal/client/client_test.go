package client

import (
	"testing"
	"time"

	"github.com/darrenkoch/httpstack/internal/headers"
	"github.com/darrenkoch/httpstack/internal/message"
	"github.com/darrenkoch/httpstack/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *server.Server {
	t.Helper()
	router := server.New()
	router.Handle("/", func(req *message.Request) server.Result {
		return server.Respond(&message.Response{
			Status:  message.StatusOK,
			Headers: message.ContentLengthHeaders([]byte("pong")),
			Body:    []byte("pong"),
		})
	})
	srv, err := server.Serve(server.Config{
		Addr:              "127.0.0.1:0",
		Router:            router,
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestClientDoRoundTrip(t *testing.T) {
	srv := startTestServer(t)
	c := New(Config{Addr: srv.Addr().String(), NumConnections: 2, ReadTimeout: 2 * time.Second})
	defer c.Close()

	req := NewRequest(srv.Addr().String(), "GET", "/", nil)
	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), resp.Status.Code)
	assert.Equal(t, "pong", string(resp.Body))
}

func TestClientDoReusesConnectionAcrossCalls(t *testing.T) {
	srv := startTestServer(t)
	c := New(Config{Addr: srv.Addr().String(), NumConnections: 1, ReadTimeout: 2 * time.Second})
	defer c.Close()

	for i := 0; i < 3; i++ {
		req := NewRequest(srv.Addr().String(), "GET", "/", nil)
		resp, err := c.Do(req)
		require.NoError(t, err)
		assert.Equal(t, "pong", string(resp.Body))
	}
}

func TestNewRequestSetsHostHeader(t *testing.T) {
	req := NewRequest("example:80", "GET", "/x", nil)
	v, ok := req.Headers.GetString("host")
	require.True(t, ok)
	assert.Equal(t, "example:80", v)
}

func TestClientDoRejectsRequestMissingHost(t *testing.T) {
	srv := startTestServer(t)
	c := New(Config{Addr: srv.Addr().String(), NumConnections: 1, ReadTimeout: 2 * time.Second})
	defer c.Close()

	req := &message.Request{Method: "GET", Target: "/", Headers: headers.NewMap()}
	_, err := c.Do(req)
	require.ErrorIs(t, err, ErrMissingHost)
}

func TestClientDoRedialsAfterConnectionDroppedExternally(t *testing.T) {
	srv := startTestServer(t)
	c := New(Config{Addr: srv.Addr().String(), NumConnections: 1, ReadTimeout: 2 * time.Second})
	defer c.Close()

	req := NewRequest(srv.Addr().String(), "GET", "/", nil)
	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(resp.Body))

	// Simulate the peer (or an idle-timeout reaper) dropping the connection
	// out from under the client, without going through Do/dial.
	c.slots[0].mu.Lock()
	require.NoError(t, c.slots[0].stream.Close())
	c.slots[0].mu.Unlock()

	resp, err = c.Do(req)
	require.NoError(t, err, "Do must redial and retry against the new connection, not the stale Serializer")
	assert.Equal(t, "pong", string(resp.Body))
}
