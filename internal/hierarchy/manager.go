package hierarchy

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskObserver is notified after a task has been created or moved. It's
// the integration point for the external auto-linker: an optional,
// best-effort side channel that receives the task id and nothing else.
// The engine never waits on it and never rolls back because of it.
type TaskObserver interface {
	OnTaskChanged(taskID string)
}

// Options control engine policy.
type Options struct {
	// AllowCrossProjectMove permits moves between projects. When set, the
	// moved subtree inherits the destination's project label as part of
	// the move cascade. Off by default: a subtree cannot straddle two
	// projects either way.
	AllowCrossProjectMove bool
}

// Manager is the public operation surface of the task tree engine. It
// composes the level machine, path codec and repository into validated
// structural operations.
//
// A Manager is an explicit handle: the hosting process constructs one and
// passes it to every caller. There is no package-level instance.
//
// Structural operations (create, move, delete) are serialized by an
// internal mutex — the engine is single-writer by design, so two movers
// can never compute stale sibling segments or miss each other's cycle
// check. Reads are not locked.
type Manager struct {
	repo     Repository
	opts     Options
	observer TaskObserver

	mu sync.Mutex
}

// NewManager creates a Manager over the given repository.
func NewManager(repo Repository, opts Options) *Manager {
	return &Manager{repo: repo, opts: opts}
}

// SetObserver wires the optional auto-linker observer. A nil observer
// disables notification.
func (m *Manager) SetObserver(o TaskObserver) {
	m.observer = o
}

func (m *Manager) notify(taskID string) {
	if m.observer != nil {
		m.observer.OnTaskChanged(taskID)
	}
}

func newTaskID() string {
	return "task-" + uuid.New().String()[:8]
}

// CreateRoot creates a project-level task. The project label defaults to
// the slugged title when empty; every descendant created under this root
// inherits it.
func (m *Manager) CreateRoot(project string, params CreateParams) (*Task, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if project == "" {
		project = Slug(params.Title)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	segment, err := m.repo.NextSiblingSegment("")
	if err != nil {
		return nil, fmt.Errorf("allocate root segment: %w", err)
	}

	task := m.assemble(params)
	task.Level = LevelProject
	task.Path = Path{segment}
	task.SemanticPath = Slug(params.Title)
	task.Project = project

	if err := m.repo.Insert(task); err != nil {
		return nil, err
	}
	m.notify(task.ID)
	return task, nil
}

// CreateChild creates a task one level below its parent. The level is
// derived through NextLevel, never chosen by the caller; attaching under
// a subtask fails with ErrDepthExceeded and creates nothing.
func (m *Manager) CreateChild(parentID string, params CreateParams) (*Task, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent, err := m.repo.Get(parentID)
	if err != nil {
		return nil, fmt.Errorf("load parent %s: %w", parentID, err)
	}

	level, err := NextLevel(&parent.Level)
	if err != nil {
		return nil, fmt.Errorf("under %s: %w", parentID, err)
	}

	segment, err := m.repo.NextSiblingSegment(parentID)
	if err != nil {
		return nil, fmt.Errorf("allocate segment under %s: %w", parentID, err)
	}

	task := m.assemble(params)
	task.Level = level
	task.Path = parent.Path.Child(segment)
	task.SemanticPath = SemanticChild(parent.SemanticPath, params.Title)
	task.ParentID = parent.ID
	task.Project = parent.Project

	if err := m.repo.Insert(task); err != nil {
		return nil, err
	}
	m.notify(task.ID)
	return task, nil
}

func (m *Manager) assemble(params CreateParams) *Task {
	now := time.Now().UTC()
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return &Task{
		ID:             newTaskID(),
		Title:          strings.TrimSpace(params.Title),
		Description:    params.Description,
		Status:         StatusTodo,
		Priority:       priority,
		Tags:           params.Tags,
		EstimatedHours: params.EstimatedHours,
		Assignee:       params.Assignee,
		DueDate:        params.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Move re-parents a task and its entire subtree. All legality checks run
// before any write; the cascade of path/level rewrites is applied as one
// atomic unit, so readers never observe a half-moved subtree and a failed
// move leaves every row untouched.
func (m *Manager) Move(taskID, newParentID string) error {
	if taskID == newParentID {
		return fmt.Errorf("%w: %s", ErrSelfMove, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, err := m.repo.Get(taskID)
	if err != nil {
		return fmt.Errorf("load task %s: %w", taskID, err)
	}
	newParent, err := m.repo.Get(newParentID)
	if err != nil {
		return fmt.Errorf("load new parent %s: %w", newParentID, err)
	}

	// Paths are rewritten as a consequence of the move, so acyclicity is
	// checked up front rather than relied on.
	if task.Path.IsAncestorOf(newParent.Path) {
		return fmt.Errorf("%w: %s is a descendant of %s", ErrCycleDetected, newParentID, taskID)
	}

	// Per-row levels are derived from the rebased depths below; this only
	// rejects a destination that cannot take children at all.
	if _, err := NextLevel(&newParent.Level); err != nil {
		return fmt.Errorf("move %s under %s: %w", taskID, newParentID, err)
	}

	crossing := task.Project != newParent.Project
	if crossing && !m.opts.AllowCrossProjectMove {
		return fmt.Errorf("%w: %s (%s) into %s (%s)",
			ErrCrossProjectMove, taskID, task.Project, newParentID, newParent.Project)
	}

	subtree, err := m.repo.Subtree(task.Path)
	if err != nil {
		return fmt.Errorf("load subtree of %s: %w", taskID, err)
	}

	// The root passed the depth check, but its deepest descendant must
	// fit under MaxDepth too — a stage carrying subtasks cannot move
	// under a task.
	newDepth := newParent.Path.Depth() + 1
	for _, row := range subtree {
		if newDepth+(row.Path.Depth()-task.Path.Depth()) > MaxDepth {
			return fmt.Errorf("%w: descendant %s would sink below subtask", ErrDepthExceeded, row.ID)
		}
	}

	segment, err := m.repo.NextSiblingSegment(newParentID)
	if err != nil {
		return fmt.Errorf("allocate segment under %s: %w", newParentID, err)
	}
	newPath := newParent.Path.Child(segment)
	newSemantic := SemanticChild(newParent.SemanticPath, task.Title)

	rewrites := make([]Rewrite, 0, len(subtree))
	for _, row := range subtree {
		rebased, err := row.Path.Rebase(task.Path, newPath)
		if err != nil {
			return fmt.Errorf("rebase %s: %w", row.ID, err)
		}
		level, err := LevelForDepth(rebased.Depth())
		if err != nil {
			return fmt.Errorf("rebase %s: %w", row.ID, err)
		}

		parentID := row.ParentID
		if row.ID == task.ID {
			parentID = newParentID
		}

		rewrites = append(rewrites, Rewrite{
			ID:           row.ID,
			Path:         rebased,
			Level:        level,
			SemanticPath: newSemantic + strings.TrimPrefix(row.SemanticPath, task.SemanticPath),
			ParentID:     parentID,
			Project:      newParent.Project,
		})
	}

	if err := m.repo.ApplyMove(rewrites); err != nil {
		return fmt.Errorf("move %s: %w", taskID, err)
	}
	m.notify(taskID)
	return nil
}

// Get returns a single task by id.
func (m *Manager) Get(id string) (*Task, error) {
	return m.repo.Get(id)
}

// Children returns a task's direct children in path order.
func (m *Manager) Children(id string) ([]*Task, error) {
	return m.repo.ChildrenOf(id)
}

// Update applies a patch of descriptive attributes. Structural fields are
// unreachable through it; pass a move instead.
func (m *Manager) Update(id string, patch AttributePatch) (*Task, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	return m.repo.UpdateAttributes(id, patch)
}

// Delete removes a task and cascades to its whole subtree in one atomic
// unit, returning the number of tasks removed. Re-parenting orphans is
// not offered: it could not preserve the level chain.
func (m *Manager) Delete(id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, err := m.repo.Get(id)
	if err != nil {
		return 0, fmt.Errorf("load task %s: %w", id, err)
	}
	n, err := m.repo.DeleteSubtree(task.Path)
	if err != nil {
		return 0, fmt.Errorf("delete subtree of %s: %w", id, err)
	}
	return n, nil
}

// View reconstructs the display forest. With a project label it scopes to
// that project's rows; with an empty label it spans every project.
func (m *Manager) View(project string, opts ViewOptions) ([]*TaskNode, error) {
	var rows []*Task
	if project != "" {
		var err error
		rows, err = m.repo.ByProject(project)
		if err != nil {
			return nil, fmt.Errorf("load project %s: %w", project, err)
		}
	} else {
		roots, err := m.repo.Roots()
		if err != nil {
			return nil, fmt.Errorf("load roots: %w", err)
		}
		for _, root := range roots {
			subtree, err := m.repo.Subtree(root.Path)
			if err != nil {
				return nil, fmt.Errorf("load subtree of %s: %w", root.ID, err)
			}
			rows = append(rows, subtree...)
		}
	}
	return BuildForest(rows, opts), nil
}

// ProjectStats aggregates a project's tasks by status and level.
type ProjectStats struct {
	Project  string         `json:"project"`
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	ByLevel  map[string]int `json:"by_level"`
}

// Stats computes aggregate counts for one project.
func (m *Manager) Stats(project string) (*ProjectStats, error) {
	rows, err := m.repo.ByProject(project)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", project, err)
	}
	stats := &ProjectStats{
		Project:  project,
		Total:    len(rows),
		ByStatus: make(map[Status]int),
		ByLevel:  make(map[string]int),
	}
	for _, row := range rows {
		stats.ByStatus[row.Status]++
		stats.ByLevel[row.Level.String()]++
	}
	return stats, nil
}
