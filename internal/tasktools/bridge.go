package tasktools

import "log"

// Linker is the external auto-linking collaborator: it may read the task
// and its text-search index to connect the task with memory records, but
// it has no write access back into the engine's structural fields. The
// engine only ever hands it a task id.
type Linker interface {
	LinkTask(taskID string) error
}

// LinkerFunc adapts a plain function to the Linker interface.
type LinkerFunc func(taskID string) error

// LinkTask calls f.
func (f LinkerFunc) LinkTask(taskID string) error { return f(taskID) }

// LinkerBridge forwards task create/move notifications from the engine to
// the auto-linker. It implements hierarchy.TaskObserver.
//
// The bridge is best-effort by contract: linker failures are logged and
// swallowed, never propagated — a structural operation that already
// committed must not appear to fail because a side channel did.
type LinkerBridge struct {
	linker Linker
}

// NewLinkerBridge creates a bridge around the given linker. Returns nil
// if linker is nil — callers should check before wiring (or just assign
// to a hierarchy.TaskObserver variable).
func NewLinkerBridge(linker Linker) *LinkerBridge {
	if linker == nil {
		return nil
	}
	return &LinkerBridge{linker: linker}
}

// OnTaskChanged hands the task id to the auto-linker.
func (b *LinkerBridge) OnTaskChanged(taskID string) {
	if err := b.linker.LinkTask(taskID); err != nil {
		log.Printf("WARNING: auto-linker failed for %s: %v", taskID, err)
	}
}
