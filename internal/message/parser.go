// Package message composes firstline+headers+body into the single
// suspendable MessageParser pipeline from spec.md §4.8, and carries the
// Request/Response data model (§3) and wire Serializer (§6).
//
// Generalizing teacher's internal/request.Request.parse (the `outer:`
// loop/`switch r.state` driving start-line→headers→body in one flat
// buffer) into two composed parsers — RequestParser for the server side,
// ResponseParser for the client side — each a plain resumable struct a
// Connection can park across a Blocked return, per the design notes in
// spec.md §9.
package message

import (
	"errors"
	"fmt"
	"io"

	"github.com/darrenkoch/httpstack/internal/body"
	"github.com/darrenkoch/httpstack/internal/deframe"
	"github.com/darrenkoch/httpstack/internal/firstline"
	"github.com/darrenkoch/httpstack/internal/headers"
)

type stage int

const (
	stageFirstLine stage = iota
	stageHeaders
	stageBody
	stageComplete
)

// errAlreadyComplete is the documented-misuse panic value for calling Parse
// again on a parser that already yielded a message (see DESIGN.md's Open
// Question decision: the Connection driver never does this, so re-entry is
// a programming error, not a runtime condition to recover from — matching
// original_source/src/deframe/message_deframer.rs's unreachable!() on the
// same re-entry).
const errAlreadyComplete = "message: Parse called again after Complete"

// RequestParser drives the server-side composition:
// AwaitingFirstLine -> AwaitingHeaders -> AwaitingBody -> Complete.
type RequestParser struct {
	src   io.Reader
	stage stage

	firstLine *firstline.RequestLineParser
	rl        firstline.RequestLine

	headers     *headers.Parser
	parsedHdrs  *headers.Map

	bodyParser *body.Parser
}

// NewRequestParser wraps src. A fresh RequestParser must be constructed for
// every message on a connection (spec.md §4.8: "the Connection constructs a
// fresh MessageParser for the next message").
func NewRequestParser(src io.Reader) *RequestParser {
	return &RequestParser{src: src, stage: stageFirstLine}
}

// Parse advances the state machine as far as the currently available bytes
// allow. It returns (nil, deframe.ErrBlocked) if more bytes are needed,
// (nil, io.EOF) if the peer closed cleanly before any byte of a new message
// arrived, (nil, err) for any other protocol/IO error, or (req, nil) once
// the message is fully parsed.
func (p *RequestParser) Parse() (*Request, error) {
	for {
		switch p.stage {
		case stageFirstLine:
			if p.firstLine == nil {
				p.firstLine = firstline.NewRequestLineParser(p.src)
			}
			rl, err := p.firstLine.Parse()
			if err != nil {
				return nil, err
			}
			p.rl = rl
			p.firstLine = nil
			p.stage = stageHeaders

		case stageHeaders:
			if p.headers == nil {
				p.headers = headers.NewParser(p.src)
			}
			h, err := p.headers.Parse()
			if err != nil {
				return nil, err
			}
			p.parsedHdrs = h
			p.headers = nil

			bp, err := body.NewParser(p.parsedHdrs, p.src, false)
			if err != nil {
				return nil, err
			}
			p.bodyParser = bp
			p.stage = stageBody

		case stageBody:
			b, err := p.bodyParser.Parse()
			if err != nil {
				return nil, err
			}
			p.stage = stageComplete
			return &Request{
				Method:  p.rl.Method,
				Target:  p.rl.Target,
				Headers: p.parsedHdrs,
				Body:    b,
			}, nil

		case stageComplete:
			panic(errAlreadyComplete)

		default:
			return nil, fmt.Errorf("message: unknown stage %d", p.stage)
		}
	}
}

// ResponseParser drives the client-side composition, identical in shape but
// for a status-line first stage and an until-eof body fallback (spec.md
// §4.5 rule 3: responses read until EOF absent Content-Length/chunked).
type ResponseParser struct {
	src   io.Reader
	stage stage

	statusLine *firstline.StatusLineParser
	sl         firstline.StatusLine

	headers    *headers.Parser
	parsedHdrs *headers.Map

	bodyParser *body.Parser
}

// NewResponseParser wraps src.
func NewResponseParser(src io.Reader) *ResponseParser {
	return &ResponseParser{src: src, stage: stageFirstLine}
}

// Parse has the same contract as RequestParser.Parse.
func (p *ResponseParser) Parse() (*Response, error) {
	for {
		switch p.stage {
		case stageFirstLine:
			if p.statusLine == nil {
				p.statusLine = firstline.NewStatusLineParser(p.src)
			}
			sl, err := p.statusLine.Parse()
			if err != nil {
				return nil, err
			}
			p.sl = sl
			p.statusLine = nil
			p.stage = stageHeaders

		case stageHeaders:
			if p.headers == nil {
				p.headers = headers.NewParser(p.src)
			}
			h, err := p.headers.Parse()
			if err != nil {
				return nil, err
			}
			p.parsedHdrs = h
			p.headers = nil

			bp, err := body.NewParser(p.parsedHdrs, p.src, true)
			if err != nil {
				return nil, err
			}
			p.bodyParser = bp
			p.stage = stageBody

		case stageBody:
			b, err := p.bodyParser.Parse()
			if err != nil {
				return nil, err
			}
			status, err := NewStatus(uint16(p.sl.Code))
			if err != nil {
				return nil, err
			}
			p.stage = stageComplete
			return &Response{
				Status:  status,
				Headers: p.parsedHdrs,
				Body:    b,
			}, nil

		case stageComplete:
			panic(errAlreadyComplete)

		default:
			return nil, fmt.Errorf("message: unknown stage %d", p.stage)
		}
	}
}

// IsBlocked reports whether err is the "need more bytes, call me again"
// signal from spec.md §4.2.
func IsBlocked(err error) bool {
	return errors.Is(err, deframe.ErrBlocked)
}

// IsCleanClose reports whether err is the "peer closed before sending any
// byte of a new message" signal from spec.md §4.7/§4.8.
func IsCleanClose(err error) bool {
	return errors.Is(err, io.EOF)
}
