package syncer

import "fmt"

// FetchError means the external provider was unreachable, timed out, or
// returned a failure status for every requested month. Nothing was written.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch prayer times: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// PersistError means the store batch write failed. It is surfaced to the
// caller, not retried; re-triggering the sync is the external scheduler's job.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist prayer times: %v", e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }
