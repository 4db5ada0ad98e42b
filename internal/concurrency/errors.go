package concurrency

import "errors"

// ErrUnsupported matches every *UnsupportedError.
var ErrUnsupported = errors.New("strategy unsupported")

// UnsupportedError reports that a strategy cannot run a workload on this
// runtime. It is recorded as data in the result, never treated as a failure.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return e.Reason
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

func unsupported(reason string) error {
	return &UnsupportedError{Reason: reason}
}
