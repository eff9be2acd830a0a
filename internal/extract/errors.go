package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// UnexpectedFormat is overlay text without exactly three fields, or with an unusable camera id.
	UnexpectedFormat ErrorKind = iota
	// BadTimestamp is a third field that is not a valid " d-m-yyyy h:m:s" time.
	BadTimestamp
	// OCRFailure is an error from the recognition engine itself.
	OCRFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedFormat:
		return "unexpected format"
	case BadTimestamp:
		return "bad timestamp"
	case OCRFailure:
		return "ocr failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError reports overlay text that could not be turned into a Record.
type ParseError struct {
	Kind   ErrorKind
	Camera string // configured camera, when known
	Raw    string // text as returned by the recognizer
	Err    error
}

func (e *ParseError) Error() string {
	msg := "could not extract text"
	if e.Camera != "" {
		msg += " from " + e.Camera
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsKind reports whether err is a ParseError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == k
}
