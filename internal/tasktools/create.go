package tasktools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// CreateProjectTool handles the task_create_project MCP tool.
type CreateProjectTool struct {
	manager *hierarchy.Manager
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(manager *hierarchy.Manager) *CreateProjectTool {
	return &CreateProjectTool{manager: manager}
}

// Definition returns the MCP tool definition for task_create_project.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("task_create_project",
		mcp.WithDescription(
			"Create a new project — the root of a task hierarchy. Stages go under projects, "+
				"tasks under stages, subtasks under tasks (fixed 4-level tree).",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Project title (e.g. 'Website Redesign')"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
		mcp.WithString("project",
			mcp.Description("Project label inherited by every task in the tree (default: slug of the title)"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority: low, medium, high, urgent (default: medium)"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
		mcp.WithString("assignee",
			mcp.Description("Who owns the project"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date as YYYY-MM-DD"),
		),
		mcp.WithNumber("estimated_hours",
			mcp.Description("Estimated effort in hours"),
		),
	)
}

// Handle processes the task_create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := createParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if params.Title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	task, err := t.manager.CreateRoot(req.GetString("project", ""), params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
	}
	return mcp.NewToolResultText("Project created.\n" + taskSummary(task)), nil
}

// ─── Child creation ─────────────────────────────────────────────────────────

// CreateChildTool handles the task_create_stage, task_create_task and
// task_create_subtask MCP tools. One struct serves all three: the level
// of a new task is always derived from its parent, so the variants differ
// only in name and in the level they promise the caller.
type CreateChildTool struct {
	manager *hierarchy.Manager
	name    string
	level   hierarchy.Level
	parent  hierarchy.Level
}

// NewCreateStageTool creates the tool that adds a stage under a project.
func NewCreateStageTool(manager *hierarchy.Manager) *CreateChildTool {
	return &CreateChildTool{
		manager: manager,
		name:    "task_create_stage",
		level:   hierarchy.LevelStage,
		parent:  hierarchy.LevelProject,
	}
}

// NewCreateTaskTool creates the tool that adds a task under a stage.
func NewCreateTaskTool(manager *hierarchy.Manager) *CreateChildTool {
	return &CreateChildTool{
		manager: manager,
		name:    "task_create_task",
		level:   hierarchy.LevelTask,
		parent:  hierarchy.LevelStage,
	}
}

// NewCreateSubtaskTool creates the tool that adds a subtask under a task.
func NewCreateSubtaskTool(manager *hierarchy.Manager) *CreateChildTool {
	return &CreateChildTool{
		manager: manager,
		name:    "task_create_subtask",
		level:   hierarchy.LevelSubtask,
		parent:  hierarchy.LevelTask,
	}
}

// Definition returns the MCP tool definition for this create variant.
func (t *CreateChildTool) Definition() mcp.Tool {
	return mcp.NewTool(t.name,
		mcp.WithDescription(fmt.Sprintf(
			"Create a %s under an existing %s. The parent determines the new item's level and path.",
			t.level, t.parent,
		)),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("ID of the parent %s", t.parent)),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, descriptive title"),
		),
		mcp.WithString("description",
			mcp.Description("Details, acceptance criteria, notes"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority: low, medium, high, urgent (default: medium)"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
		mcp.WithString("assignee",
			mcp.Description("Who works on it"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date as YYYY-MM-DD"),
		),
		mcp.WithNumber("estimated_hours",
			mcp.Description("Estimated effort in hours"),
		),
	)
}

// Handle processes a child-creation tool call.
func (t *CreateChildTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	parentID := req.GetString("parent_id", "")
	if parentID == "" {
		return mcp.NewToolResultError("'parent_id' is required"), nil
	}
	params, err := createParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if params.Title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	// The engine derives the level; this tool just promises one. Catch a
	// mismatched parent up front so the user gets told which tool fits.
	parent, err := t.manager.Get(parentID)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("parent %s not found", parentID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load parent: %v", err)), nil
	}
	if parent.Level != t.parent {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s is a %s — a %s can only be created under a %s",
			parentID, parent.Level, t.level, t.parent,
		)), nil
	}

	task, err := t.manager.CreateChild(parentID, params)
	if err != nil {
		if errors.Is(err, hierarchy.ErrDepthExceeded) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"cannot create below a subtask: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to create %s: %v", t.level, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s created.\n%s",
		capitalize(t.level.String()), taskSummary(task))), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
