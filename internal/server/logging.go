package server

import (
	"encoding/json"
	"io"
	"log"
	"time"
)

// accessLogEntry is the structured access-log line, JSON-encoded the way
// MiraiMindz-watt/bolt's middleware/logger.go structures its request logs
// — this replaces the teacher's tab-separated log.Printf line from
// internal/server/server.go with the same information, structured, while
// keeping the same ambient choice of the standard log package as the
// output sink (no external logging library is grounded anywhere in this
// corpus's HTTP-domain repos; see DESIGN.md).
type accessLogEntry struct {
	Time       string `json:"time"`
	RequestID  string `json:"request_id"`
	Remote     string `json:"remote"`
	Method     string `json:"method"`
	Target     string `json:"target"`
	Status     int    `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	Bytes      int    `json:"bytes"`
	Err        string `json:"err,omitempty"`
}

// accessLogger writes one JSON line per served request and one per
// connection closed on a protocol error.
type accessLogger struct {
	l *log.Logger
}

func newAccessLogger(w io.Writer) *accessLogger {
	return &accessLogger{l: log.New(w, "", 0)}
}

func (a *accessLogger) logRequest(requestID, remote, method, target string, status int, d time.Duration, bytes int) {
	a.emit(accessLogEntry{
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:  requestID,
		Remote:     remote,
		Method:     method,
		Target:     target,
		Status:     status,
		DurationMS: float64(d.Microseconds()) / 1000.0,
		Bytes:      bytes,
	})
}

func (a *accessLogger) logError(requestID, remote string, d time.Duration, err error) {
	a.emit(accessLogEntry{
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:  requestID,
		Remote:     remote,
		Status:     400,
		DurationMS: float64(d.Microseconds()) / 1000.0,
		Err:        err.Error(),
	})
}

func (a *accessLogger) emit(e accessLogEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		a.l.Printf("httpstack: access log marshal error: %v", err)
		return
	}
	a.l.Println(string(b))
}
