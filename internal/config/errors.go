package config

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a configuration Error.
type ErrorKind int

const (
	// InvalidCropRegion is a crop rectangle that is malformed or does not fit the frame.
	InvalidCropRegion ErrorKind = iota
	// InvalidValue is a field with an out-of-range or unparsable value.
	InvalidValue
	// MissingValue is a required field left empty.
	MissingValue
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCropRegion:
		return "invalid crop region"
	case InvalidValue:
		return "invalid value"
	case MissingValue:
		return "missing value"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a configuration error. It is fatal at startup.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a configuration Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

func invalid(field string, format string, args ...any) *Error {
	return &Error{Kind: InvalidValue, Field: field, Err: fmt.Errorf(format, args...)}
}

func missing(field string) *Error {
	return &Error{Kind: MissingValue, Field: field, Err: errors.New("required")}
}
