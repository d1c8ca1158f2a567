package tasktools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// ViewTool handles the task_view MCP tool.
type ViewTool struct {
	manager *hierarchy.Manager
}

// NewViewTool creates a ViewTool.
func NewViewTool(manager *hierarchy.Manager) *ViewTool {
	return &ViewTool{manager: manager}
}

// Definition returns the MCP tool definition for task_view.
func (t *ViewTool) Definition() mcp.Tool {
	return mcp.NewTool("task_view",
		mcp.WithDescription(
			"Show the task tree. Scope to one project with the project parameter, or omit it "+
				"to see every project. Done tasks are hidden unless include_completed is set.",
		),
		mcp.WithString("project",
			mcp.Description("Project label to scope the view to"),
		),
		mcp.WithBoolean("include_completed",
			mcp.Description("Include tasks that are done (default: false)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Limit the tree to this many levels (default: all 4)"),
		),
	)
}

// Handle processes the task_view tool call.
func (t *ViewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	opts := hierarchy.ViewOptions{
		IncludeDone: boolArg(req, "include_completed", false),
		MaxDepth:    intArg(req, "max_depth", 0),
	}

	forest, err := t.manager.View(project, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build view: %v", err)), nil
	}
	if len(forest) == 0 {
		if project != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No tasks in project %q.", project)), nil
		}
		return mcp.NewToolResultText("No tasks yet. Create a project with task_create_project."), nil
	}

	header := "Task tree"
	if project != "" {
		header = fmt.Sprintf("Task tree for %q", project)
	}
	return mcp.NewToolResultText(header + ":\n\n" + renderForest(forest)), nil
}
