package tasktools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// GetTool handles the task_get MCP tool.
type GetTool struct {
	manager *hierarchy.Manager
}

// NewGetTool creates a GetTool.
func NewGetTool(manager *hierarchy.Manager) *GetTool {
	return &GetTool{manager: manager}
}

// Definition returns the MCP tool definition for task_get.
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("task_get",
		mcp.WithDescription("Read one task with its description and direct children."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to read"),
		),
	)
}

// Handle processes the task_get tool call.
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.manager.Get(id)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("task %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read task: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString(taskSummary(task))
	if task.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", task.Description)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(task.Tags, ", "))
	}
	if task.EstimatedHours > 0 || task.ActualHours > 0 {
		fmt.Fprintf(&b, "\nHours: %.1f estimated, %.1f actual", task.EstimatedHours, task.ActualHours)
	}

	children, err := t.manager.Children(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read children: %v", err)), nil
	}
	if len(children) > 0 {
		fmt.Fprintf(&b, "\n\nChildren (%d):\n", len(children))
		for _, c := range children {
			fmt.Fprintf(&b, "  %s %s  (%s, %s)\n", statusIcon(c.Status), c.Title, c.ID, c.Path)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// ─── UpdateTool ─────────────────────────────────────────────────────────────

// UpdateTool handles the task_update MCP tool.
type UpdateTool struct {
	manager *hierarchy.Manager
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(manager *hierarchy.Manager) *UpdateTool {
	return &UpdateTool{manager: manager}
}

// Definition returns the MCP tool definition for task_update.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_update",
		mcp.WithDescription(
			"Update a task's descriptive fields: title, description, status, priority, tags, "+
				"assignee, due date, hours. Position in the tree never changes here — use task_move.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("status",
			mcp.Description("New status: todo, in_progress, done, blocked"),
		),
		mcp.WithString("priority",
			mcp.Description("New priority: low, medium, high, urgent"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags (replaces the existing set)"),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date as YYYY-MM-DD, or 'none' to clear it"),
		),
		mcp.WithNumber("estimated_hours",
			mcp.Description("New estimated hours"),
		),
		mcp.WithNumber("actual_hours",
			mcp.Description("New actual hours"),
		),
	)
}

// Handle processes the task_update tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	args := req.GetArguments()
	for _, key := range []string{"path", "level", "parent_id", "project"} {
		if _, ok := args[key]; ok {
			return mcp.NewToolResultError(fmt.Sprintf(
				"%v: %q — use task_move to change a task's position", hierarchy.ErrImmutableField, key)), nil
		}
	}

	var patch hierarchy.AttributePatch
	if v, ok := args["title"].(string); ok {
		patch.Title = &v
	}
	if v, ok := args["description"].(string); ok {
		patch.Description = &v
	}
	if v, ok := args["status"].(string); ok {
		status := hierarchy.Status(v)
		patch.Status = &status
	}
	if v, ok := args["priority"].(string); ok {
		priority := hierarchy.Priority(v)
		patch.Priority = &priority
	}
	if _, ok := args["tags"]; ok {
		tags := tagsArg(req, "tags")
		patch.Tags = &tags
	}
	if v, ok := args["assignee"].(string); ok {
		patch.Assignee = &v
	}
	if v, ok := args["estimated_hours"].(float64); ok {
		patch.EstimatedHours = &v
	}
	if v, ok := args["actual_hours"].(float64); ok {
		patch.ActualHours = &v
	}
	if v, ok := args["due_date"].(string); ok {
		if v == "none" {
			patch.ClearDueDate = true
		} else {
			due, err := time.Parse("2006-01-02", v)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("due_date must be YYYY-MM-DD or 'none': %v", err)), nil
			}
			patch.DueDate = &due
		}
	}

	task, err := t.manager.Update(id, patch)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("task %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}
	return mcp.NewToolResultText("Task updated.\n" + taskSummary(task)), nil
}

// ─── DeleteTool ─────────────────────────────────────────────────────────────

// DeleteTool handles the task_delete MCP tool.
type DeleteTool struct {
	manager *hierarchy.Manager
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(manager *hierarchy.Manager) *DeleteTool {
	return &DeleteTool{manager: manager}
}

// Definition returns the MCP tool definition for task_delete.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("task_delete",
		mcp.WithDescription(
			"Delete a task and everything under it. The whole subtree is removed in one step — "+
				"children are never orphaned or re-parented.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to delete"),
		),
	)
}

// Handle processes the task_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	n, err := t.manager.Delete(id)
	if err != nil {
		if errors.Is(err, hierarchy.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("task %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}
	if n == 1 {
		return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted with %d descendants.", id, n-1)), nil
}
