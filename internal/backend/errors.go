package backend

import "fmt"

// FetchError is a read-path failure: the network call errored or the
// response was malformed. Callers keep serving their previous snapshot.
type FetchError struct {
	Op  string // logical operation, e.g. "list items"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError is a write-path failure: the backend rejected the request
// with a non-success status. Message is the backend's error body, or a
// generic fallback when it sent none.
type SubmissionError struct {
	Status  int
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.Status, e.Message)
}
