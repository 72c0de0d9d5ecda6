package message

import "github.com/darrenkoch/httpstack/internal/headers"

// Request is a fully parsed HTTP request (spec.md §3).
type Request struct {
	Method  string
	Target  string
	Headers *headers.Map
	Body    []byte
}

// Close reports whether this request asked the connection to close after
// its response is written (spec.md §4.9/§6).
func (r *Request) Close() bool {
	v, ok := r.Headers.GetString("connection")
	return ok && v == "close"
}
