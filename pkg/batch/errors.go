package batch

import "fmt"

// StagingError is a preparatory copy that could not be made. It aborts the
// batch before any tool runs.
type StagingError struct {
	ItemID string
	Path   string
	Err    error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s from %s: %v", e.ItemID, e.Path, e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}
