package remote

import "fmt"

// FetchError reports a failure retrieving the task collection. It wraps the
// underlying network or decode error.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch tasks: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a failed save or remove against the remote store. A
// write failure is reported once to the owning collaborator and never rolls
// back the local mutation that triggered it.
type WriteError struct {
	Op  string // "save", "remove", or "save identity"
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
