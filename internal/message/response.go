package message

import "github.com/darrenkoch/httpstack/internal/headers"

// Response is a fully parsed (or handler-built) HTTP response (spec.md §3).
// Chunked marks a response body whose length is unknown up front; the
// Serializer then writes it with chunked transfer-encoding instead of a
// Content-Length header (see SPEC_FULL.md §9, adapted from the teacher's
// response.Writer.WriteChunkedBody).
type Response struct {
	Status  Status
	Headers *headers.Map
	Body    []byte
	Chunked bool
}

// Close reports whether this response told the client pool to drop the
// underlying stream rather than reuse it (SPEC_FULL.md §9).
func (r *Response) Close() bool {
	v, ok := r.Headers.GetString("connection")
	return ok && v == "close"
}
