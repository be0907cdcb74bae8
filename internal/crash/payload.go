package crash

import (
	"fmt"
	"strconv"
)

// Location is the source position a failure was raised at.
type Location struct {
	File string
	Line int
}

// String renders the location as file:line.
func (l Location) String() string {
	return l.File + ":" + strconv.Itoa(l.Line)
}

// PayloadKind tags what a recovered panic value carried.
type PayloadKind uint8

const (
	// PayloadText is a preformatted message, used as-is.
	PayloadText PayloadKind = iota
	// PayloadOpaque is a generic value known only by its description.
	PayloadOpaque
)

// Payload is the panic value, resolved once when the failure is caught.
type Payload struct {
	Kind PayloadKind
	Text string
}

// PayloadOf classifies a recovered value. Strings are taken verbatim;
// anything else is described as "panicked at '<value>', <file>:<line>".
func PayloadOf(value any, loc *Location) Payload {
	if s, ok := value.(string); ok {
		return Payload{Kind: PayloadText, Text: s}
	}
	desc := "panicked at '" + fmt.Sprintf("%+v", value) + "'"
	if loc != nil {
		desc += ", " + loc.String()
	}
	return Payload{Kind: PayloadOpaque, Text: desc}
}

// Message returns the text to report: opaque descriptions go through Normalize.
func (p Payload) Message() string {
	if p.Kind == PayloadText {
		return p.Text
	}
	return Normalize(p.Text)
}
