package hierarchy

import (
	"fmt"
	"strings"
	"time"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// ParseStatus validates a stored or supplied status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Priority orders tasks for presentation; it has no structural effect.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a stored or supplied priority value.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Task is the sole persisted entity of the engine.
//
// Structural fields (Path, Level, ParentID, Project) are owned by the
// engine and change only through Create/Move; everything else is a
// descriptive attribute mutable via UpdateAttributes.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Level       Level    `json:"-"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Path        Path     `json:"-"`
	// SemanticPath mirrors Path with slugged titles. Display only, never
	// authoritative.
	SemanticPath string `json:"semantic_path,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	// Project is the scoping label inherited from the root ancestor; it
	// is constant across a subtree.
	Project        string     `json:"project"`
	Tags           []string   `json:"tags,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	ActualHours    float64    `json:"actual_hours,omitempty"`
	Assignee       string     `json:"assignee,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateParams holds caller-supplied fields for a new task. Level, path,
// parent and project scoping are derived by the engine, never supplied.
type CreateParams struct {
	Title          string
	Description    string
	Priority       Priority
	Tags           []string
	EstimatedHours float64
	Assignee       string
	DueDate        *time.Time
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if p.Priority != "" {
		if _, err := ParsePriority(string(p.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// AttributePatch is a partial update of descriptive fields. Nil pointers
// leave the field untouched. There is deliberately no way to express a
// path, level or parent change here.
type AttributePatch struct {
	Title          *string
	Description    *string
	Status         *Status
	Priority       *Priority
	Tags           *[]string
	EstimatedHours *float64
	ActualHours    *float64
	Assignee       *string
	DueDate        *time.Time
	ClearDueDate   bool
}

func (p AttributePatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if p.Status != nil {
		if _, err := ParseStatus(string(*p.Status)); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if _, err := ParsePriority(string(*p.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// Slug normalizes a title into a semantic path segment: lowercase,
// non-alphanumerics collapsed to single hyphens.
func Slug(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SemanticChild extends a parent's semantic path with a slugged title.
func SemanticChild(parentSemantic, title string) string {
	slug := Slug(title)
	if parentSemantic == "" {
		return slug
	}
	return parentSemantic + "/" + slug
}
