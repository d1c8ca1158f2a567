package hierarchy

import "errors"

// Structural validation errors. Callers match them with errors.Is; the
// engine wraps each occurrence with the offending id(s) so failures never
// surface as a bare "operation failed".
var (
	// ErrNotFound — a task or parent id does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrDepthExceeded — the operation would create a task below the
	// subtask level. Creation under a subtask is rejected, never clamped.
	ErrDepthExceeded = errors.New("hierarchy depth exceeded")

	// ErrCycleDetected — a move would place a task under its own
	// descendant.
	ErrCycleDetected = errors.New("move would create a cycle")

	// ErrSelfMove — a task cannot become its own parent.
	ErrSelfMove = errors.New("task cannot be moved under itself")

	// ErrDuplicatePath — two tasks would share a materialized path.
	// Unreachable when segment allocation is correct, checked defensively.
	ErrDuplicatePath = errors.New("duplicate task path")

	// ErrMalformedPath — a stored or supplied path string does not decode.
	ErrMalformedPath = errors.New("malformed path")

	// ErrCrossProjectMove — a move would straddle two projects and the
	// manager's policy disallows it.
	ErrCrossProjectMove = errors.New("cross-project move not allowed")

	// ErrImmutableField — an attribute update tried to change a
	// structural field (path, level, parent). Those change only via Move.
	ErrImmutableField = errors.New("structural field is immutable")
)
