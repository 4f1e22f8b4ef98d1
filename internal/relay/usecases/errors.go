package usecases

import (
	"errors"
	"fmt"
)

var (
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrMalformedResponse    = errors.New("malformed backend response")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
	ErrNoPendingImport      = errors.New("no pending import")
	ErrEmptyUpload          = errors.New("uploaded file is empty")
)

// StatusError is a non-2xx answer from the backend. It counts as the backend
// being unavailable for callers that only care about reachability.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend answered %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrBackendUnavailable
}
