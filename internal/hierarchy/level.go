package hierarchy

import "fmt"

// Level is a task's rank in the fixed 4-tier hierarchy. The chain is a
// strict total order: every child sits exactly one level below its parent.
type Level int

const (
	LevelProject Level = iota
	LevelStage
	LevelTask
	LevelSubtask
)

// MaxDepth is the number of levels, and therefore the maximum segment
// count of any materialized path.
const MaxDepth = 4

// String returns the stored/displayed level name.
func (l Level) String() string {
	switch l {
	case LevelProject:
		return "project"
	case LevelStage:
		return "stage"
	case LevelTask:
		return "task"
	case LevelSubtask:
		return "subtask"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel decodes a stored level name.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "project":
		return LevelProject, nil
	case "stage":
		return LevelStage, nil
	case "task":
		return LevelTask, nil
	case "subtask":
		return LevelSubtask, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// LevelForDepth maps a path depth (segment count) to its level.
func LevelForDepth(depth int) (Level, error) {
	if depth < 1 || depth > MaxDepth {
		return 0, fmt.Errorf("%w: depth %d", ErrDepthExceeded, depth)
	}
	return Level(depth - 1), nil
}

// NextLevel is the single source of truth for level assignment: it
// returns the level of a new child given its parent's level. A nil parent
// yields LevelProject; a subtask parent yields ErrDepthExceeded. Callers
// never choose a level directly for non-root tasks.
func NextLevel(parent *Level) (Level, error) {
	if parent == nil {
		return LevelProject, nil
	}
	switch *parent {
	case LevelProject:
		return LevelStage, nil
	case LevelStage:
		return LevelTask, nil
	case LevelTask:
		return LevelSubtask, nil
	case LevelSubtask:
		return 0, fmt.Errorf("%w: cannot attach a child under a subtask", ErrDepthExceeded)
	}
	return 0, fmt.Errorf("invalid parent level %d", int(*parent))
}
