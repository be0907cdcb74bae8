// Package errs holds the error values produced by rudderc units of work.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind uint8

const (
	// User errors come from bad input or invocation.
	User Kind = iota
	Parsing
	Compilation
	IO
)

func (k Kind) String() string {
	switch k {
	case User:
		return "User"
	case Parsing:
		return "Parsing"
	case Compilation:
		return "Compilation"
	case IO:
		return "IO"
	}
	return "Unknown"
}

// Error is a single rudderc error with an optional context chain,
// outermost context first.
type Error struct {
	Kind    Kind
	Context []string
	Message string
	cause   error
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap adds context in front of err. Foreign errors become IO errors and
// stay reachable through errors.Unwrap.
func Wrap(err error, context string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		out := *e
		out.Context = append([]string{context}, e.Context...)
		return &out
	}
	return &Error{Kind: IO, Context: []string{context}, Message: err.Error(), cause: err}
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return strings.Join(e.Context, ": ") + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Format implements fmt.Formatter. The %+v verb prints the debug form,
// e.g. User("bad flag") or `ctx: Error { kind: IO, message: "gone" }`.
func (e *Error) Format(f fmt.State, verb rune) {
	switch {
	case verb == 'v' && f.Flag('+'):
		if len(e.Context) == 0 {
			fmt.Fprintf(f, "%s(%q)", e.Kind, e.Message)
			return
		}
		fmt.Fprintf(f, "%s: Error { kind: %s, message: %q }", strings.Join(e.Context, ": "), e.Kind, e.Message)
	case verb == 'q':
		fmt.Fprintf(f, "%q", e.Error())
	default:
		fmt.Fprint(f, e.Error())
	}
}

// List aggregates the errors of one unit of work.
type List struct {
	errs []error
}

// NewList builds a list, skipping nil entries.
func NewList(errs ...error) *List {
	l := &List{}
	for _, err := range errs {
		l.Add(err)
	}
	return l
}

// Add appends err; nested lists are flattened.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	var nested *List
	if errors.As(err, &nested) {
		l.errs = append(l.errs, nested.errs...)
		return
	}
	l.errs = append(l.errs, err)
}

// Len returns the number of collected errors.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.errs)
}

// ErrOrNil returns l when it holds at least one error.
func (l *List) ErrOrNil() error {
	if l.Len() == 0 {
		return nil
	}
	return l
}

func (l *List) Error() string {
	return strings.Join(l.CleanFormatList(), "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *List) Unwrap() []error {
	if l == nil {
		return nil
	}
	return l.errs
}

// CleanFormatList returns one plain line per error, in insertion order.
// Lines carry no styling and no trailing newline.
func (l *List) CleanFormatList() []string {
	if l == nil {
		return []string{}
	}
	out := make([]string, 0, len(l.errs))
	for _, err := range l.errs {
		out = append(out, clean(err.Error()))
	}
	return out
}

// clean flattens multi-line messages onto a single line.
func clean(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return strings.Join(fields, " ")
}
