package datanode

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAlreadyConnected is returned when a node's request would have to change
	// after its connection has been established and cached.
	ErrAlreadyConnected = errors.New("connection already established")

	// ErrUnsupportedScheme is returned by [Open] for locations whose URL scheme
	// has no registered [Opener].
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrStatus marks a response whose status code does not allow the requested
	// operation (i.e. reading the body of a 404)
	ErrStatus = errors.New("unexpected status")
)

// IOError is the single failure category for node operations. It records the
// operation and the node path that failed along with the underlying cause.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Cause satisfies the github.com/pkg/errors causer interface.
func (e *IOError) Cause() error { return e.Err }

// NewIOError wraps err as an [*IOError]. A nil err yields nil and an err that
// already is an IOError is returned unchanged so causes are not double wrapped.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: errors.WithStack(err)}
}

// IsIOError reports whether err is or wraps an [*IOError].
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// AssertionError is returned by [AssertExists] when the node is absent.
type AssertionError struct {
	Path string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: node doesn't exist: [%s]", e.Path)
}

// IsAssertion reports whether err is or wraps an [*AssertionError].
func IsAssertion(err error) bool {
	var aErr *AssertionError
	return errors.As(err, &aErr)
}
