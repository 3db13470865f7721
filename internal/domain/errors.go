package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the error taxonomy. Callers classify failures with
// errors.Is; adapters wrap these with fmt.Errorf("%w: ...") to add detail.
var (
	// ErrInvalidArgument indicates bad caller input (empty query, overlap >= size,
	// fewer than two documents for a comparison). Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates an absent corpus, document, or source file.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a corpus id collision at creation time.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnavailable indicates an unreachable or erroring backend (embedding,
	// index, conversion). Surfaced as the failure of the single operation;
	// retry policy belongs to the caller.
	ErrUnavailable = errors.New("unavailable")
)

// PartialBatchError summarizes a batch in which some items failed while
// others succeeded. It is reported once in the batch's final summary; the
// batch itself never aborts early.
type PartialBatchError struct {
	Failed    int
	Succeeded int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("partial batch failure: %d of %d items failed", e.Failed, e.Failed+e.Succeeded)
}
