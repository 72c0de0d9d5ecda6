// Package server implements the out-of-core-scope collaborators spec.md §1
// still gives full designs for: the Router (§4.12), the acceptor/readiness
// loop (§4.11, rendered as goroutine-per-connection — see SPEC_FULL.md §1),
// the bounded handler worker pool, and ambient Prometheus metrics.
package server

import (
	"strings"

	"github.com/darrenkoch/httpstack/internal/message"
)

// Result is a handler's verdict: either Next (try the next entry) or a
// Response to send, matching spec.md §4.12's Next/SendResponse/
// SendResponseShared trio. Go needs no owned-vs-shared distinction — a
// *message.Response is safely shared by any number of readers as long as
// it is never mutated after construction (spec.md §3's ownership rule),
// so both teacher-style "build a fresh body" handlers and "return a
// pre-built singleton" handlers use the same Result shape.
type Result struct {
	Next     bool
	Response *message.Response
}

// Next is the zero-allocation "keep trying" result.
var Next = Result{Next: true}

// Respond wraps resp as a terminal result.
func Respond(resp *message.Response) Result {
	return Result{Response: resp}
}

// HandlerFunc handles (or declines) one request.
type HandlerFunc func(req *message.Request) Result

type routeEntry struct {
	prefix  string
	handler HandlerFunc
}

// Router is an ordered list of (prefix, handler) pairs matched against the
// request target, in insertion order (spec.md §4.12).
type Router struct {
	entries []routeEntry
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Handle registers h for any target with the given prefix.
func (r *Router) Handle(prefix string, h HandlerFunc) {
	r.entries = append(r.entries, routeEntry{prefix: prefix, handler: h})
}

// Mount installs sub under prefix: sub only sees requests whose target has
// prefix stripped off, and only matches when the original target actually
// carries that prefix (spec.md §4.12 "the prefix is stripped before
// sub-router matching").
func (r *Router) Mount(prefix string, sub *Router) {
	r.Handle(prefix, func(req *message.Request) Result {
		if !strings.HasPrefix(req.Target, prefix) {
			return Next
		}
		stripped := *req
		stripped.Target = strings.TrimPrefix(req.Target, prefix)
		if stripped.Target == "" {
			stripped.Target = "/"
		}
		return sub.dispatch(&stripped)
	})
}

// Route matches req against every entry in order. matched is false when
// every entry returned Next, meaning the caller should emit the
// wire-exact canned 404 from spec.md §6 rather than a constructed
// Response (the canned form carries no headers or body at all).
func (r *Router) Route(req *message.Request) (resp *message.Response, matched bool) {
	result := r.dispatch(req)
	if result.Response != nil {
		return result.Response, true
	}
	return nil, false
}

// dispatch runs the entries without the fallback, so Mount can tell a true
// "nothing matched" apart from a terminal response.
func (r *Router) dispatch(req *message.Request) Result {
	for _, e := range r.entries {
		if !strings.HasPrefix(req.Target, e.prefix) {
			continue
		}
		result := e.handler(req)
		if !result.Next {
			return result
		}
	}
	return Next
}
