package config

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindInvalid  ErrorKind = "invalid_description"
	KindBuild    ErrorKind = "build_failed"
)

// OpError is returned by every function of the package. Path is the
// description file, Field the offending entry when known.
type OpError struct {
	Op    string
	Kind  ErrorKind
	Path  string
	Field string
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Field != "" {
		base += ": " + e.Field
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an OpError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Kind == kind
}

func invalidField(path, field, msg string) error {
	return &OpError{
		Op:    "config.map",
		Kind:  KindInvalid,
		Path:  path,
		Field: field,
		Err:   errors.New(msg),
	}
}
