package cluster

import "errors"

// Sentinel errors returned by Propagate and Vectors. They are wrapped in
// coded errors from pkg/errors, so both errors.Is and errors.GetCode work.
var (
	// ErrUnknownKey is returned when an edge references a key absent from the key set.
	ErrUnknownKey = errors.New("unknown key")

	// ErrDuplicateKey is returned when the same key appears twice in the input assignments.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotConverged is returned when the sweep cap is reached before a fixpoint.
	ErrNotConverged = errors.New("labels did not converge")

	// ErrLengthMismatch is returned by Vectors when parallel slices differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
)
