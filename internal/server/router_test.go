package server

import (
	"testing"

	"github.com/darrenkoch/httpstack/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteMatchesInOrder(t *testing.T) {
	r := New()
	r.Handle("/a", func(req *message.Request) Result {
		return Respond(&message.Response{Status: message.StatusOK})
	})
	r.Handle("/", func(req *message.Request) Result {
		return Respond(&message.Response{Status: message.StatusNotFound})
	})

	resp, matched := r.Route(&message.Request{Target: "/a/sub"})
	require.True(t, matched)
	assert.Equal(t, message.StatusOK, resp.Status)
}

func TestRouteFallsThroughOnNext(t *testing.T) {
	r := New()
	r.Handle("/a", func(req *message.Request) Result { return Next })
	resp, matched := r.Route(&message.Request{Target: "/a"})
	assert.False(t, matched)
	assert.Nil(t, resp)
}

func TestRouteNoEntriesMatchesNothing(t *testing.T) {
	r := New()
	resp, matched := r.Route(&message.Request{Target: "/whatever"})
	assert.False(t, matched)
	assert.Nil(t, resp)
}

func TestMountStripsPrefixBeforeSubRouting(t *testing.T) {
	sub := New()
	var seenTarget string
	sub.Handle("/", func(req *message.Request) Result {
		seenTarget = req.Target
		return Respond(&message.Response{Status: message.StatusOK})
	})

	r := New()
	r.Mount("/api", sub)

	resp, matched := r.Route(&message.Request{Target: "/api/users"})
	require.True(t, matched)
	assert.Equal(t, message.StatusOK, resp.Status)
	assert.Equal(t, "/users", seenTarget)
}

func TestMountDefaultsEmptyStrippedTargetToSlash(t *testing.T) {
	sub := New()
	var seenTarget string
	sub.Handle("/", func(req *message.Request) Result {
		seenTarget = req.Target
		return Respond(&message.Response{Status: message.StatusOK})
	})

	r := New()
	r.Mount("/api", sub)

	_, matched := r.Route(&message.Request{Target: "/api"})
	require.True(t, matched)
	assert.Equal(t, "/", seenTarget)
}

func TestMountDoesNotMatchWithoutPrefix(t *testing.T) {
	sub := New()
	sub.Handle("/", func(req *message.Request) Result {
		return Respond(&message.Response{Status: message.StatusOK})
	})

	r := New()
	r.Mount("/api", sub)

	_, matched := r.Route(&message.Request{Target: "/other"})
	assert.False(t, matched)
}
