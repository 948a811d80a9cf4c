package fixfmt

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every *FormatError matches ErrFormat and every
// *DecodeError matches ErrDecode.
var (
	ErrFormat = errors.New("fixfmt: format error")
	ErrDecode = errors.New("fixfmt: decode error")
)

// FormatError reports a structural problem with a document: a missing format
// line, a bad format token, a line count that does not fit the layout, or a
// mismatch between variable names and decoded fields.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return "fixfmt: " + e.Message
}

// Is lets errors.Is(err, ErrFormat) match any *FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func newFormatError(format string, args ...interface{}) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// DecodeError reports bad content inside a field window.
type DecodeError struct {
	// Group is the zero-based index of the logical record (group of
	// physical lines) being decoded.
	Group int

	// Field is the zero-based index of the field occurrence within the
	// record, after repeat expansion.
	Field int

	// Window is the raw text of the field window, if any was read.
	Window string

	Message string
}

func (e *DecodeError) Error() string {
	if e.Window != "" {
		return fmt.Sprintf("fixfmt: record %d field %d: %s (%q)", e.Group, e.Field, e.Message, e.Window)
	}
	return fmt.Sprintf("fixfmt: record %d field %d: %s", e.Group, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrDecode) match any *DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
