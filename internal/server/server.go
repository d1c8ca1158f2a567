// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete store, the
// hierarchy manager and the tool handlers, and injects them into each
// other. No business logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/treeline/internal/hierarchy"
	"github.com/HendryAvila/treeline/internal/taskstore"
	"github.com/HendryAvila/treeline/internal/tasktools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options configure the server composition.
type Options struct {
	// DataDir overrides the default task database location (~/.treeline).
	DataDir string

	// AllowCrossProjectMove enables moves between projects; the moved
	// subtree is relabeled to the destination project.
	AllowCrossProjectMove bool

	// Linker is the optional auto-linking collaborator. When set, every
	// successful create and move hands it the task id, best-effort. A
	// hosting dashboard process wires its own linker here; the plain CLI
	// serves without one.
	Linker tasktools.Linker
}

// New creates and configures the MCP server with all task tools
// registered. This is the single place where dependencies are resolved.
//
// The returned cleanup function closes the task store's database
// connection and must be called on shutdown (typically via defer).
func New(opts Options) (*server.MCPServer, func(), error) {
	cfg := taskstore.DefaultConfig()
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	store, err := taskstore.New(cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("creating task store: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	manager := hierarchy.NewManager(store, hierarchy.Options{
		AllowCrossProjectMove: opts.AllowCrossProjectMove,
	})
	if bridge := tasktools.NewLinkerBridge(opts.Linker); bridge != nil {
		manager.SetObserver(bridge)
	}

	s := server.NewMCPServer(
		"treeline",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Creation tools, one per level ---

	createProject := tasktools.NewCreateProjectTool(manager)
	s.AddTool(createProject.Definition(), createProject.Handle)

	createStage := tasktools.NewCreateStageTool(manager)
	s.AddTool(createStage.Definition(), createStage.Handle)

	createTask := tasktools.NewCreateTaskTool(manager)
	s.AddTool(createTask.Definition(), createTask.Handle)

	createSubtask := tasktools.NewCreateSubtaskTool(manager)
	s.AddTool(createSubtask.Definition(), createSubtask.Handle)

	// --- Structure ---

	moveTool := tasktools.NewMoveTool(manager)
	s.AddTool(moveTool.Definition(), moveTool.Handle)

	viewTool := tasktools.NewViewTool(manager)
	s.AddTool(viewTool.Definition(), viewTool.Handle)

	// --- Management ---

	getTool := tasktools.NewGetTool(manager)
	s.AddTool(getTool.Definition(), getTool.Handle)

	updateTool := tasktools.NewUpdateTool(manager)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	deleteTool := tasktools.NewDeleteTool(manager)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	statsTool := tasktools.NewStatsTool(manager)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s, cleanup, nil
}

// serverInstructions returns the system instructions that tell the AI
// how to use treeline effectively.
func serverInstructions() string {
	return `You have access to treeline, a hierarchical task manager.

## The hierarchy

Work is organized in a fixed 4-level tree:

  project → stage → task → subtask

Every item has a numeric path showing its position (e.g. "001.002.003" is
the third task of the second stage of the first project). Levels are
never chosen directly: an item's level comes from its parent. Nothing can
be created under a subtask.

## Tools

- task_create_project: start a new tree (e.g. "Website Redesign")
- task_create_stage: add a phase under a project (e.g. "Research")
- task_create_task: add a work item under a stage
- task_create_subtask: break a task into steps
- task_view: show the tree (scope with project, hide/show done items)
- task_get: read one item with its children
- task_update: change title, description, status, priority, tags,
  assignee, due date, hours — never the position
- task_move: re-parent an item; its whole subtree moves with it
- task_delete: remove an item AND everything under it
- task_stats: progress counts for a project

## Rules

- Use task_move to restructure, never delete-and-recreate: moving keeps
  ids, descriptions and history, and rewrites all descendant paths
  atomically.
- A move is rejected if it would create a cycle, push a subtask below
  level 4, or cross projects. Explain the rejection to the user rather
  than retrying blindly.
- task_delete cascades. Confirm with the user before deleting an item
  that has children.
- Statuses: todo, in_progress, done, blocked. Mark items done as work
  completes so task_view stays useful.
- When the user describes a body of work, lay it out top-down: project
  first, then stages for the phases, then tasks, then subtasks only
  where a task genuinely needs breaking down.`
}
