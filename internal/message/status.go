package message

import "github.com/darrenkoch/httpstack/internal/firstline"

// Status is a (code, reason) pair drawn from the closed table below
// (spec.md §3). The table is intentionally small and extensible by adding
// entries here, per spec.md §6.
type Status struct {
	Code   uint16
	Reason string
}

var statusTable = map[uint16]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	500: "Internal Server Error",
}

// Well-known statuses, for handlers and the canned error responses.
var (
	StatusOK                  = Status{Code: 200, Reason: statusTable[200]}
	StatusBadRequest          = Status{Code: 400, Reason: statusTable[400]}
	StatusNotFound            = Status{Code: 404, Reason: statusTable[404]}
	StatusInternalServerError = Status{Code: 500, Reason: statusTable[500]}
)

// NewStatus looks code up in the closed table. An out-of-table code fails
// with firstline.ErrInvalidStatusCode, the same sentinel the status-line
// parser itself uses for a non-numeric code, since both are "this isn't a
// status this stack knows how to represent" per spec.md §3/§4.7.
func NewStatus(code uint16) (Status, error) {
	reason, ok := statusTable[code]
	if !ok {
		return Status{}, firstline.ErrInvalidStatusCode
	}
	return Status{Code: code, Reason: reason}, nil
}
