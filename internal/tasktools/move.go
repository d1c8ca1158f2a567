package tasktools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// MoveTool handles the task_move MCP tool.
type MoveTool struct {
	manager *hierarchy.Manager
}

// NewMoveTool creates a MoveTool.
func NewMoveTool(manager *hierarchy.Manager) *MoveTool {
	return &MoveTool{manager: manager}
}

// Definition returns the MCP tool definition for task_move.
func (t *MoveTool) Definition() mcp.Tool {
	return mcp.NewTool("task_move",
		mcp.WithDescription(
			"Move a task (and its whole subtree) under a new parent. Paths and levels of every "+
				"descendant are rewritten atomically. Rejected if it would exceed the 4-level depth, "+
				"create a cycle, or cross projects.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to move"),
		),
		mcp.WithString("new_parent_id",
			mcp.Required(),
			mcp.Description("ID of the destination parent"),
		),
	)
}

// Handle processes the task_move tool call.
func (t *MoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	newParentID := req.GetString("new_parent_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	if newParentID == "" {
		return mcp.NewToolResultError("'new_parent_id' is required"), nil
	}

	if err := t.manager.Move(taskID, newParentID); err != nil {
		switch {
		case errors.Is(err, hierarchy.ErrSelfMove):
			return mcp.NewToolResultError(fmt.Sprintf("cannot move %s under itself", taskID)), nil
		case errors.Is(err, hierarchy.ErrCycleDetected):
			return mcp.NewToolResultError(fmt.Sprintf(
				"cannot move %s under its own descendant %s", taskID, newParentID)), nil
		case errors.Is(err, hierarchy.ErrDepthExceeded):
			return mcp.NewToolResultError(fmt.Sprintf("move rejected: %v", err)), nil
		case errors.Is(err, hierarchy.ErrCrossProjectMove):
			return mcp.NewToolResultError(fmt.Sprintf("move rejected: %v", err)), nil
		case errors.Is(err, hierarchy.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("move failed: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to move task: %v", err)), nil
	}

	task, err := t.manager.Get(taskID)
	if err != nil {
		// The move committed; reporting the new position is best-effort.
		return mcp.NewToolResultText(fmt.Sprintf("Task %s moved under %s.", taskID, newParentID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Task moved.\n%s", taskSummary(task))), nil
}
