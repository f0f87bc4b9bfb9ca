package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies an error by how the chat loops react to it.
type Kind uint8

const (
	Other         Kind = iota
	Invalid            // bad configuration or arguments
	Connection         // bus unreachable; fatal at startup, reported at runtime
	TransientRead      // one record could not be read; skip it
	Publish            // one message could not be published; skip it
	Timeout            // a bounded wait expired
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Connection:
		return "connection"
	case TransientRead:
		return "transient read"
	case Publish:
		return "publish"
	case Timeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error is a classified error carrying an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or Other when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func New(msg string) error {
	return stderrors.New(msg)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// ValidationErrors collects field level problems in the order they were found.
type ValidationErrors struct {
	fields []string
	msgs   []string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a problem for field.
func (v *ValidationErrors) Add(field, msg string) {
	v.fields = append(v.fields, field)
	v.msgs = append(v.msgs, msg)
}

func (v *ValidationErrors) Len() int {
	return len(v.fields)
}

// Err returns nil when nothing was added.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	parts := make([]string, len(v.fields))
	for i := range v.fields {
		parts[i] = v.fields[i] + " " + v.msgs[i]
	}
	return E(Invalid, "validation failed", stderrors.New(strings.Join(parts, "; ")))
}
