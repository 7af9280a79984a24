package domain

import "github.com/cockroachdb/errors"

var (
	ErrValidation = errors.New("missing required fields")
	ErrSoldOut    = errors.New("sold out")
	ErrUnknown    = errors.New("unknown failure")
	ErrNotFound   = errors.New("not found")
)

type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindSoldOut    ErrorKind = "sold_out"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// KindOf classifies err. Anything that is neither a validation nor a sold-out
// error is reported as unknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrSoldOut):
		return ErrorKindSoldOut
	default:
		return ErrorKindUnknown
	}
}

// Unknown marks err so that errors.Is(err, ErrUnknown) holds while keeping the
// original cause in the chain.
func Unknown(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrUnknown)
}
