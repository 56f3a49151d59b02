package bedrock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for nil handles, a zero or negative
	// stride, element slices of the wrong length, capacity requests below the
	// current length, and operations on a released vector.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange is returned when an index is not below the current
	// length, including pop/end on an empty vector. Use errors.Is to match;
	// the concrete error is usually an *IndexError carrying the details.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrOutOfMemory is returned when a buffer cannot be allocated: the
	// requested byte size overflows, or a configured resource.Controller
	// budget is exhausted. On this error the vector keeps its prior state.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrUnknown is a reserved fallback. It should not occur.
	ErrUnknown = errors.New("unknown error")
)

// IndexError reports an out-of-range index access.
//
// It satisfies errors.Is(err, ErrIndexOutOfRange).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// CallbackError wraps an error reported by a user callback during ForEach,
// Filter or Map. The cause is opaque to the container and passed through
// verbatim; it can be reached via errors.Unwrap / errors.As.
type CallbackError struct {
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback failed: %v", e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
