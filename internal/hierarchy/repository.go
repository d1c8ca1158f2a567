package hierarchy

// Rewrite is one row of a move cascade: the task's structural fields
// after re-parenting. ParentID and Project are applied to every row so a
// cross-project move can relabel the whole subtree in the same pass.
type Rewrite struct {
	ID           string
	Path         Path
	Level        Level
	SemanticPath string
	ParentID     string
	Project      string
}

// Repository is the persistence surface the engine reads and writes
// through. Implementations translate these calls into row storage; they
// enforce path uniqueness (ErrDuplicatePath) and report missing ids as
// ErrNotFound, but carry no other business rules — legality of structural
// mutations is decided by Manager before any write.
type Repository interface {
	// Get returns the task with the given id, or ErrNotFound.
	Get(id string) (*Task, error)

	// Insert persists a new task. Fails with ErrDuplicatePath if the
	// task's path is already taken.
	Insert(t *Task) error

	// UpdateAttributes applies a patch of descriptive fields and returns
	// the updated row. Structural fields are not reachable through it.
	UpdateAttributes(id string, patch AttributePatch) (*Task, error)

	// ChildrenOf returns the direct children of a task, in path order.
	ChildrenOf(parentID string) ([]*Task, error)

	// Subtree returns every task whose path has prefix as a prefix,
	// including the task at prefix itself, in path order.
	Subtree(prefix Path) ([]*Task, error)

	// Roots returns all project-level tasks, in path order.
	Roots() ([]*Task, error)

	// ByProject returns every task carrying the project label, in path
	// order.
	ByProject(project string) ([]*Task, error)

	// NextSiblingSegment returns the smallest unused segment value among
	// the children of parentID. An empty parentID allocates among roots.
	NextSiblingSegment(parentID string) (uint, error)

	// ApplyMove persists a move cascade as a single atomic unit: either
	// every rewrite commits or none does.
	ApplyMove(rewrites []Rewrite) error

	// DeleteSubtree removes the task at prefix and all its descendants
	// atomically, returning the number of rows removed.
	DeleteSubtree(prefix Path) (int, error)
}
