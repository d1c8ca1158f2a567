// Package taskstore implements the hierarchy.Repository interface on
// SQLite. Tasks are rows keyed by id with a unique materialized path
// column, queryable by parent, by project, and by path prefix — the three
// access patterns the engine needs — plus atomic multi-row writes for
// move and delete cascades.
package taskstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds task store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration for the task store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".treeline"),
	}
}

// Store is the SQLite-backed task repository.
type Store struct {
	db *sql.DB
}

// Verify the Repository contract at compile time.
var _ hierarchy.Repository = (*Store)(nil)

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("taskstore: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "tasks.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("taskstore: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("taskstore: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("taskstore: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id              TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			level           TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'todo',
			priority        TEXT NOT NULL DEFAULT 'medium',
			path            TEXT NOT NULL UNIQUE,
			semantic_path   TEXT NOT NULL DEFAULT '',
			parent_id       TEXT,
			project         TEXT NOT NULL,
			tags            TEXT NOT NULL DEFAULT '[]',
			estimated_hours REAL NOT NULL DEFAULT 0,
			actual_hours    REAL NOT NULL DEFAULT 0,
			assignee        TEXT NOT NULL DEFAULT '',
			due_date        TEXT,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES tasks(id)
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_parent  ON tasks(parent_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project, path);
		CREATE INDEX IF NOT EXISTS idx_tasks_status  ON tasks(status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ─── Row mapping ─────────────────────────────────────────────────────────────

const taskColumns = `id, title, description, level, status, priority, path,
	semantic_path, parent_id, project, tags, estimated_hours, actual_hours,
	assignee, due_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*hierarchy.Task, error) {
	var (
		t         hierarchy.Task
		level     string
		status    string
		priority  string
		pathStr   string
		parentID  sql.NullString
		tagsJSON  string
		dueDate   sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &level, &status, &priority, &pathStr,
		&t.SemanticPath, &parentID, &t.Project, &tagsJSON, &t.EstimatedHours,
		&t.ActualHours, &t.Assignee, &dueDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Level, err = hierarchy.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.Status, err = hierarchy.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.Priority, err = hierarchy.ParsePriority(priority); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.Path, err = hierarchy.ParsePath(pathStr); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.ParentID = parentID.String

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
			return nil, fmt.Errorf("task %s: tags: %w", t.ID, err)
		}
	}
	if dueDate.Valid {
		due, err := time.Parse(time.RFC3339, dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: due_date: %w", t.ID, err)
		}
		t.DueDate = &due
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("task %s: created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: updated_at: %w", t.ID, err)
	}
	return &t, nil
}

func (s *Store) queryTasks(query string, args ...any) ([]*hierarchy.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []*hierarchy.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func marshalTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// prefixPattern matches a path and everything under it. Fixed-width
// segment rendering makes the LIKE pattern exact: "001.%" can never
// match a sibling of "001".
func prefixPattern(p hierarchy.Path) (exact, like string) {
	exact = p.String()
	return exact, exact + hierarchy.PathSeparator + "%"
}

// ─── Repository implementation ───────────────────────────────────────────────

// Get returns the task with the given id.
func (s *Store) Get(id string) (*hierarchy.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", hierarchy.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("taskstore: get %s: %w", id, err)
	}
	return t, nil
}

// Insert persists a new task row.
func (s *Store) Insert(t *hierarchy.Task) error {
	_, err := s.db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Level.String(), string(t.Status),
		string(t.Priority), t.Path.String(), t.SemanticPath,
		nullableString(t.ParentID), t.Project, marshalTags(t.Tags),
		t.EstimatedHours, t.ActualHours, t.Assignee, nullableTime(t.DueDate),
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.path") {
			return fmt.Errorf("%w: %s", hierarchy.ErrDuplicatePath, t.Path)
		}
		return fmt.Errorf("taskstore: insert %s: %w", t.ID, err)
	}
	return nil
}

// UpdateAttributes applies a patch of descriptive fields and returns the
// updated row. Structural columns are not touched here — the patch type
// cannot express them.
func (s *Store) UpdateAttributes(id string, patch hierarchy.AttributePatch) (*hierarchy.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*patch.Priority))
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, marshalTags(*patch.Tags))
	}
	if patch.EstimatedHours != nil {
		sets = append(sets, "estimated_hours = ?")
		args = append(args, *patch.EstimatedHours)
	}
	if patch.ActualHours != nil {
		sets = append(sets, "actual_hours = ?")
		args = append(args, *patch.ActualHours)
	}
	if patch.Assignee != nil {
		sets = append(sets, "assignee = ?")
		args = append(args, *patch.Assignee)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, patch.DueDate.UTC().Format(time.RFC3339))
	} else if patch.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("taskstore: update %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("taskstore: update %s: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", hierarchy.ErrNotFound, id)
	}
	return s.Get(id)
}

// ChildrenOf returns the direct children of a task, in path order.
func (s *Store) ChildrenOf(parentID string) ([]*hierarchy.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY path`, parentID)
	if err != nil {
		return nil, fmt.Errorf("taskstore: children of %s: %w", parentID, err)
	}
	return tasks, nil
}

// Subtree returns the task at prefix and every descendant, in path order.
func (s *Store) Subtree(prefix hierarchy.Path) ([]*hierarchy.Task, error) {
	exact, like := prefixPattern(prefix)
	tasks, err := s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks WHERE path = ? OR path LIKE ? ORDER BY path`,
		exact, like)
	if err != nil {
		return nil, fmt.Errorf("taskstore: subtree %s: %w", exact, err)
	}
	return tasks, nil
}

// Roots returns all project-level tasks, in path order.
func (s *Store) Roots() ([]*hierarchy.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT ` + taskColumns + ` FROM tasks WHERE parent_id IS NULL ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("taskstore: roots: %w", err)
	}
	return tasks, nil
}

// ByProject returns every task carrying the project label, in path order.
func (s *Store) ByProject(project string) ([]*hierarchy.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskColumns+` FROM tasks WHERE project = ? ORDER BY path`, project)
	if err != nil {
		return nil, fmt.Errorf("taskstore: project %s: %w", project, err)
	}
	return tasks, nil
}

// NextSiblingSegment returns the smallest segment value not used by any
// existing child of parentID. Empty parentID allocates among roots.
func (s *Store) NextSiblingSegment(parentID string) (uint, error) {
	query := `SELECT path FROM tasks WHERE parent_id = ?`
	args := []any{parentID}
	if parentID == "" {
		query = `SELECT path FROM tasks WHERE parent_id IS NULL`
		args = nil
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return 0, fmt.Errorf("taskstore: sibling segments of %q: %w", parentID, err)
	}
	defer func() { _ = rows.Close() }()

	used := make(map[uint]bool)
	for rows.Next() {
		var pathStr string
		if err := rows.Scan(&pathStr); err != nil {
			return 0, fmt.Errorf("taskstore: sibling segments of %q: %w", parentID, err)
		}
		p, err := hierarchy.ParsePath(pathStr)
		if err != nil {
			return 0, fmt.Errorf("taskstore: sibling segments of %q: %w", parentID, err)
		}
		used[p.Segment()] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("taskstore: sibling segments of %q: %w", parentID, err)
	}

	segment := uint(1)
	for used[segment] {
		segment++
	}
	return segment, nil
}

// ApplyMove persists a move cascade in a single transaction. Either every
// rewrite commits or none does — a partial cascade would leave orphaned
// or duplicate paths behind.
func (s *Store) ApplyMove(rewrites []hierarchy.Rewrite) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("taskstore: begin move: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rw := range rewrites {
		res, err := tx.Exec(`
			UPDATE tasks
			SET path = ?, level = ?, semantic_path = ?, parent_id = ?,
			    project = ?, updated_at = ?
			WHERE id = ?`,
			rw.Path.String(), rw.Level.String(), rw.SemanticPath,
			nullableString(rw.ParentID), rw.Project, now, rw.ID,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.path") {
				return fmt.Errorf("%w: %s", hierarchy.ErrDuplicatePath, rw.Path)
			}
			return fmt.Errorf("taskstore: rewrite %s: %w", rw.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("taskstore: rewrite %s: %w", rw.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", hierarchy.ErrNotFound, rw.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("taskstore: commit move: %w", err)
	}
	return nil
}

// DeleteSubtree removes the task at prefix and all its descendants
// atomically, returning the number of rows removed. The parent_id foreign
// key is deferred for the transaction: a single prefix DELETE removes
// parents and children in unspecified order, and immediate checks would
// reject a parent deleted before its child.
func (s *Store) DeleteSubtree(prefix hierarchy.Path) (int, error) {
	exact, like := prefixPattern(prefix)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("taskstore: begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
		return 0, fmt.Errorf("taskstore: defer foreign keys: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM tasks WHERE path = ? OR path LIKE ?`, exact, like)
	if err != nil {
		return 0, fmt.Errorf("taskstore: delete subtree %s: %w", exact, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("taskstore: delete subtree %s: %w", exact, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("taskstore: commit delete: %w", err)
	}
	return int(n), nil
}
