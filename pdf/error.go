package pdf

import (
	"fmt"

	"github.com/juju/errgo"
)

// Causes attached to errors returned from this package.
// Test for them with errgo.Cause.
var (
	// ErrMalformed is the cause of errors from parsing bytes that are
	// not valid PDF syntax.
	ErrMalformed = errgo.New("malformed pdf")

	// ErrNotFound is the cause when a reference does not resolve.
	ErrNotFound = errgo.New("object not found")

	// ErrFreed is the cause when a reference resolves to a free entry.
	ErrFreed = errgo.New("object is free")

	// ErrGeneration is the cause when an IndirectObject is added with a
	// generation number lower than the one already in use.
	ErrGeneration = errgo.New("generation number too small")

	// ErrUnsupported is the cause for valid PDF features this package
	// does not handle (e.g., unknown stream filters).
	ErrUnsupported = errgo.New("unsupported")
)

func malformedf(format string, args ...interface{}) error {
	return errgo.WithCausef(nil, ErrMalformed, format, args...)
}

// maskErr keeps the location of the error and lets its cause through.
func maskErr(err error) error {
	if err == nil {
		return nil
	}
	return errgo.Mask(err, errgo.Any)
}

func pushErrf(err error, format string, args ...interface{}) error {
	return errgo.NoteMask(err, fmt.Sprintf(format, args...), errgo.Any)
}
