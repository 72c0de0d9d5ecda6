package message

import (
	"fmt"
	"io"
	"strconv"

	"github.com/darrenkoch/httpstack/internal/headers"
)

// Serializer encodes Requests (client side) and Responses (server side) onto
// the wire, adapted from the teacher's internal/response.Writer
// (WriteStatusLine/WriteHeaders/WriteBody/WriteChunkedBody) and extended
// with request-line encoding for the client, which the teacher never
// needed.
type Serializer struct {
	w io.Writer
}

// NewSerializer wraps w (typically a Connection's buffered writer).
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{w: w}
}

// WriteRequest writes the request line, headers and body verbatim.
func (s *Serializer) WriteRequest(req *Request) error {
	if _, err := fmt.Fprintf(s.w, "%s %s %s\r\n", req.Method, req.Target, firstLineVersion); err != nil {
		return err
	}
	if err := s.writeHeaders(req.Headers); err != nil {
		return err
	}
	_, err := s.w.Write(req.Body)
	return err
}

// WriteResponse writes the status line, headers and body. When resp.Chunked
// is set the body is written as chunked transfer-encoding (1024-byte chunks,
// matching the teacher's WriteChunkedBody) and any content-length header is
// dropped in favor of `transfer-encoding: chunked`, per spec.md §6.
func (s *Serializer) WriteResponse(resp *Response) error {
	if _, err := fmt.Fprintf(s.w, "%s %d %s\r\n", firstLineVersion, resp.Status.Code, resp.Status.Reason); err != nil {
		return err
	}
	h := resp.Headers
	if resp.Chunked {
		h = headers.NewMap()
		if resp.Headers != nil {
			resp.Headers.Range(func(name headers.Name, value string) {
				if n := name.String(); n != "content-length" && n != "transfer-encoding" {
					h.Add(name, value)
				}
			})
		}
		h.Add(headers.NewName([]byte("transfer-encoding")), "chunked")
	}
	if err := s.writeHeaders(h); err != nil {
		return err
	}
	if resp.Chunked {
		return s.writeChunkedBody(resp.Body)
	}
	_, err := s.w.Write(resp.Body)
	return err
}

const firstLineVersion = "HTTP/1.1"

func (s *Serializer) writeHeaders(h *headers.Map) error {
	if h == nil {
		_, err := io.WriteString(s.w, "\r\n")
		return err
	}
	var err error
	h.Range(func(name headers.Name, value string) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(s.w, "%s: %s\r\n", name.String(), value)
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.w, "\r\n")
	return err
}

const maxChunkSize = 1024

func (s *Serializer) writeChunkedBody(body []byte) error {
	for len(body) > 0 {
		n := len(body)
		if n > maxChunkSize {
			n = maxChunkSize
		}
		chunk := body[:n]
		body = body[n:]
		if _, err := fmt.Fprintf(s.w, "%x\r\n", len(chunk)); err != nil {
			return err
		}
		if _, err := s.w.Write(chunk); err != nil {
			return err
		}
		if _, err := io.WriteString(s.w, "\r\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.w, "0\r\n\r\n")
	return err
}

// ContentLengthHeaders builds a fresh header map with a correct
// content-length entry for body, the way the teacher's
// response.GetDefaultHeaders seeds a response.
func ContentLengthHeaders(body []byte) *headers.Map {
	h := headers.NewMap()
	h.Add(headers.NewName([]byte("content-length")), strconv.Itoa(len(body)))
	return h
}
