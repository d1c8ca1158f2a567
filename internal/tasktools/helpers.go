// Package tasktools provides MCP tool handlers for the task tree engine.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies (hierarchy.Manager) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Handlers validate inputs and translate between the MCP surface and the
// engine's typed operations; every structural rule lives in the engine.
package tasktools

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// floatArg extracts a float argument from a tool request.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// tagsArg parses a comma-separated tags argument into a slice.
func tagsArg(req mcp.CallToolRequest, key string) []string {
	raw := req.GetString(key, "")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// createParams collects the descriptive fields shared by all create tools.
func createParams(req mcp.CallToolRequest) (hierarchy.CreateParams, error) {
	params := hierarchy.CreateParams{
		Title:          req.GetString("title", ""),
		Description:    req.GetString("description", ""),
		Priority:       hierarchy.Priority(req.GetString("priority", "")),
		Tags:           tagsArg(req, "tags"),
		EstimatedHours: floatArg(req, "estimated_hours", 0),
		Assignee:       req.GetString("assignee", ""),
	}
	if due := req.GetString("due_date", ""); due != "" {
		t, err := time.Parse("2006-01-02", due)
		if err != nil {
			return params, fmt.Errorf("due_date must be YYYY-MM-DD: %v", err)
		}
		params.DueDate = &t
	}
	return params, nil
}

// statusIcon maps a status to its display marker.
func statusIcon(s hierarchy.Status) string {
	switch s {
	case hierarchy.StatusDone:
		return "[x]"
	case hierarchy.StatusInProgress:
		return "[>]"
	case hierarchy.StatusBlocked:
		return "[!]"
	default:
		return "[ ]"
	}
}

// taskSummary renders a one-task confirmation block for create/get results.
func taskSummary(t *hierarchy.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q\n", t.Level, t.Title)
	fmt.Fprintf(&b, "ID: %s\n", t.ID)
	fmt.Fprintf(&b, "Path: %s", t.Path)
	if t.SemanticPath != "" {
		fmt.Fprintf(&b, " (%s)", t.SemanticPath)
	}
	fmt.Fprintf(&b, "\nProject: %s\n", t.Project)
	fmt.Fprintf(&b, "Status: %s | Priority: %s", t.Status, t.Priority)
	if t.Assignee != "" {
		fmt.Fprintf(&b, " | Assignee: %s", t.Assignee)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, " | Due: %s", t.DueDate.Format("2006-01-02"))
	}
	return b.String()
}

// renderForest renders a nested tree as indented text for view results.
func renderForest(nodes []*hierarchy.TaskNode) string {
	var b strings.Builder
	hierarchy.Walk(nodes, func(node *hierarchy.TaskNode, depth int) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s %s  (%s, %s, %s)\n",
			indent, statusIcon(node.Status), node.Title, node.ID, node.Path, node.Priority)
	})
	return b.String()
}
