package tasktools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// StatsTool handles the task_stats MCP tool.
type StatsTool struct {
	manager *hierarchy.Manager
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(manager *hierarchy.Manager) *StatsTool {
	return &StatsTool{manager: manager}
}

// Definition returns the MCP tool definition for task_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("task_stats",
		mcp.WithDescription("Show aggregate counts for a project: tasks by status and by level."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project label to aggregate"),
		),
	)
}

// Handle processes the task_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	if project == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}

	stats, err := t.manager.Stats(project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	if stats.Total == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No tasks in project %q.", project)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %q: %d tasks\n\n", project, stats.Total)

	b.WriteString("By status:\n")
	for _, s := range []hierarchy.Status{
		hierarchy.StatusTodo, hierarchy.StatusInProgress, hierarchy.StatusDone, hierarchy.StatusBlocked,
	} {
		if n := stats.ByStatus[s]; n > 0 {
			fmt.Fprintf(&b, "  %-12s %d\n", s, n)
		}
	}

	b.WriteString("\nBy level:\n")
	for l := hierarchy.LevelProject; l <= hierarchy.LevelSubtask; l++ {
		if n := stats.ByLevel[l.String()]; n > 0 {
			fmt.Fprintf(&b, "  %-12s %d\n", l, n)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
