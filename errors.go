package cacheaside

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("cacheaside: invalid argument")
	// ErrSerialization is matched by every *SerializationError.
	ErrSerialization = errors.New("cacheaside: serialization failure")
)

// ArgumentError is returned before any I/O when a call is malformed:
// empty key, nil value, nil loader, non-positive seconds or a bad expiration.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("cacheaside: invalid argument %s: %s", e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// SerializationError wraps a codec failure. Op is "encode" or "decode".
// A value that cannot be decoded is reported, never treated as a miss.
type SerializationError struct {
	Key string
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cacheaside: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	errs = append(errs, ErrSerialization)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func checkKey(key string) error {
	if key == "" {
		return &ArgumentError{Arg: "key", Reason: "must not be empty"}
	}
	return nil
}
