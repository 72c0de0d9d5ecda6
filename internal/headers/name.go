package headers

import "github.com/intuitivelabs/bytescase"

// known is the closed set of header names this stack interns as fixed ids,
// per spec.md §3 / §6 ("Recognized header names"). Every other name is kept
// as a Custom, lowercased string.
type known uint8

const (
	notKnown known = iota
	Connection
	ContentLength
	ContentType
	TransferEncoding
	Host
)

var knownText = map[known]string{
	Connection:       "connection",
	ContentLength:    "content-length",
	ContentType:      "content-type",
	TransferEncoding: "transfer-encoding",
	Host:             "host",
}

// Name is an interned header name: either one of the well-known lowercase
// identifiers above, or a freeform custom string. Both fields are plain
// comparable values, so Name is comparable and usable directly as a map key (equality agrees
// with lowercased textual form because both Known and Custom are derived by
// folding the input through NewName at construction time).
type Name struct {
	id     known
	custom string
}

// NewName interns raw header-name bytes. Comparison against the closed set
// uses bytescase.CmpEq (case-insensitive, no allocation), the way
// intuitivelabs-httpsp's parse_headers.go folds header names. If raw doesn't
// match a known name, it is lowercased byte-by-byte via
// bytescase.ByteToLower and kept as Custom, so that later equality is a
// plain Go struct comparison.
func NewName(raw []byte) Name {
	for id, text := range knownText {
		if bytescase.CmpEq(raw, []byte(text)) {
			return Name{id: id}
		}
	}
	lowered := make([]byte, len(raw))
	for i, b := range raw {
		lowered[i] = bytescase.ByteToLower(b)
	}
	return Name{custom: string(lowered)}
}

// String returns the canonical lowercase textual form.
func (n Name) String() string {
	if n.id != notKnown {
		return knownText[n.id]
	}
	return n.custom
}

// IsKnown reports whether n is one of the closed-set identifiers.
func (n Name) IsKnown() bool {
	return n.id != notKnown
}
