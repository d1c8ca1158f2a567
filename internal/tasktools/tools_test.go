package tasktools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/treeline/internal/hierarchy"
	"github.com/HendryAvila/treeline/internal/taskstore"
)

func newTestManager(t *testing.T) *hierarchy.Manager {
	t.Helper()
	s, err := taskstore.New(taskstore.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return hierarchy.NewManager(s, hierarchy.Options{})
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// seedTree builds project → stage → task → subtask and returns the four.
func seedTree(t *testing.T, m *hierarchy.Manager) (proj, stage, task, sub *hierarchy.Task) {
	t.Helper()
	var err error
	if proj, err = m.CreateRoot("", hierarchy.CreateParams{Title: "Website Redesign"}); err != nil {
		t.Fatal(err)
	}
	if stage, err = m.CreateChild(proj.ID, hierarchy.CreateParams{Title: "Research"}); err != nil {
		t.Fatal(err)
	}
	if task, err = m.CreateChild(stage.ID, hierarchy.CreateParams{Title: "Survey users"}); err != nil {
		t.Fatal(err)
	}
	if sub, err = m.CreateChild(task.ID, hierarchy.CreateParams{Title: "Draft questions"}); err != nil {
		t.Fatal(err)
	}
	return proj, stage, task, sub
}

// ─── Create tools ───────────────────────────────────────────────────────────

func TestCreateProjectTool(t *testing.T) {
	tool := NewCreateProjectTool(newTestManager(t))

	if tool.Definition().Name != "task_create_project" {
		t.Errorf("tool name = %s", tool.Definition().Name)
	}

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"title":    "Website Redesign",
		"priority": "high",
		"tags":     "web, q4",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	text := resultText(t, res)
	for _, want := range []string{"Project created", "Path: 001", "website-redesign", "Priority: high"} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}

func TestCreateProjectTool_RequiresTitle(t *testing.T) {
	tool := NewCreateProjectTool(newTestManager(t))
	res, err := tool.Handle(context.Background(), makeReq(map[string]any{}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Fatal("missing title should be an error result")
	}
}

func TestCreateProjectTool_RejectsBadDueDate(t *testing.T) {
	tool := NewCreateProjectTool(newTestManager(t))
	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"title":    "P",
		"due_date": "next tuesday",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "YYYY-MM-DD") {
		t.Errorf("bad due date not rejected: %s", resultText(t, res))
	}
}

func TestCreateChildTools_Chain(t *testing.T) {
	m := newTestManager(t)
	proj, err := m.CreateRoot("", hierarchy.CreateParams{Title: "P"})
	if err != nil {
		t.Fatal(err)
	}

	stageRes, err := NewCreateStageTool(m).Handle(context.Background(), makeReq(map[string]any{
		"parent_id": proj.ID, "title": "Research",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if stageRes.IsError {
		t.Fatalf("create stage failed: %s", resultText(t, stageRes))
	}
	if !strings.Contains(resultText(t, stageRes), "Path: 001.001") {
		t.Errorf("stage result: %s", resultText(t, stageRes))
	}

	stages, err := m.Children(proj.ID)
	if err != nil || len(stages) != 1 {
		t.Fatalf("children: %v, %v", stages, err)
	}

	taskRes, err := NewCreateTaskTool(m).Handle(context.Background(), makeReq(map[string]any{
		"parent_id": stages[0].ID, "title": "Survey users",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, taskRes), "Path: 001.001.001") {
		t.Errorf("task result: %s", resultText(t, taskRes))
	}
}

func TestCreateChildTool_WrongParentLevel(t *testing.T) {
	m := newTestManager(t)
	proj, _, task, _ := seedTree(t, m)

	// task_create_stage under a task: the error names the mismatch.
	res, err := NewCreateStageTool(m).Handle(context.Background(), makeReq(map[string]any{
		"parent_id": task.ID, "title": "Nope",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("wrong parent level should be an error result")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "is a task") || !strings.Contains(text, "under a project") {
		t.Errorf("unhelpful mismatch message: %s", text)
	}

	// task_create_subtask under a project likewise.
	res, err = NewCreateSubtaskTool(m).Handle(context.Background(), makeReq(map[string]any{
		"parent_id": proj.ID, "title": "Nope",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("wrong parent level should be an error result")
	}
}

func TestCreateChildTool_ParentNotFound(t *testing.T) {
	res, err := NewCreateStageTool(newTestManager(t)).Handle(context.Background(), makeReq(map[string]any{
		"parent_id": "task-nope", "title": "S",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("missing parent not reported: %s", resultText(t, res))
	}
}

// ─── Move tool ──────────────────────────────────────────────────────────────

func TestMoveTool(t *testing.T) {
	m := newTestManager(t)
	proj, _, task, _ := seedTree(t, m)
	design, err := m.CreateChild(proj.ID, hierarchy.CreateParams{Title: "Design"})
	if err != nil {
		t.Fatal(err)
	}

	tool := NewMoveTool(m)
	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"task_id": task.ID, "new_parent_id": design.ID,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("move failed: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "Path: 001.002.001") {
		t.Errorf("move result: %s", resultText(t, res))
	}
}

func TestMoveTool_CycleMessage(t *testing.T) {
	m := newTestManager(t)
	_, stage, task, _ := seedTree(t, m)

	res, err := NewMoveTool(m).Handle(context.Background(), makeReq(map[string]any{
		"task_id": stage.ID, "new_parent_id": task.ID,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "its own descendant") {
		t.Errorf("cycle not reported: %s", resultText(t, res))
	}
}

func TestMoveTool_RequiresBothIDs(t *testing.T) {
	tool := NewMoveTool(newTestManager(t))
	for _, args := range []map[string]any{
		{"new_parent_id": "task-x"},
		{"task_id": "task-x"},
	} {
		res, err := tool.Handle(context.Background(), makeReq(args))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("args %v should be an error result", args)
		}
	}
}

// ─── View tool ──────────────────────────────────────────────────────────────

func TestViewTool(t *testing.T) {
	m := newTestManager(t)
	tool := NewViewTool(m)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "No tasks yet") {
		t.Errorf("empty store message: %s", resultText(t, res))
	}

	proj, _, task, _ := seedTree(t, m)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"project": proj.Project}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	for _, want := range []string{"Website Redesign", "Research", "Survey users", "Draft questions", "[ ]"} {
		if !strings.Contains(text, want) {
			t.Errorf("view missing %q:\n%s", want, text)
		}
	}

	// Done tasks are hidden by default.
	done := hierarchy.StatusDone
	if _, err := m.Update(task.ID, hierarchy.AttributePatch{Status: &done}); err != nil {
		t.Fatal(err)
	}
	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"project": proj.Project}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(resultText(t, res), "Survey users") {
		t.Errorf("done task not hidden:\n%s", resultText(t, res))
	}

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{
		"project": proj.Project, "include_completed": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "[x] Survey users") {
		t.Errorf("include_completed ignored:\n%s", resultText(t, res))
	}
}

func TestViewTool_MaxDepth(t *testing.T) {
	m := newTestManager(t)
	proj, _, _, _ := seedTree(t, m)

	res, err := NewViewTool(m).Handle(context.Background(), makeReq(map[string]any{
		"project": proj.Project, "max_depth": float64(2),
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Research") {
		t.Errorf("depth 2 lost the stage:\n%s", text)
	}
	if strings.Contains(text, "Survey users") {
		t.Errorf("depth 2 kept the task:\n%s", text)
	}
}

// ─── Get / Update / Delete tools ────────────────────────────────────────────

func TestGetTool(t *testing.T) {
	m := newTestManager(t)
	_, stage, task, _ := seedTree(t, m)

	res, err := NewGetTool(m).Handle(context.Background(), makeReq(map[string]any{"task_id": stage.ID}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Research") || !strings.Contains(text, "Children (1)") {
		t.Errorf("get result:\n%s", text)
	}
	if !strings.Contains(text, task.Title) {
		t.Errorf("child listing missing:\n%s", text)
	}
}

func TestGetTool_NotFound(t *testing.T) {
	res, err := NewGetTool(newTestManager(t)).Handle(context.Background(),
		makeReq(map[string]any{"task_id": "task-nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("missing task not reported: %s", resultText(t, res))
	}
}

func TestUpdateTool(t *testing.T) {
	m := newTestManager(t)
	_, _, task, _ := seedTree(t, m)

	res, err := NewUpdateTool(m).Handle(context.Background(), makeReq(map[string]any{
		"task_id": task.ID,
		"status":  "in_progress",
		"title":   "Survey early adopters",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("update failed: %s", resultText(t, res))
	}

	got, err := m.Get(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != hierarchy.StatusInProgress || got.Title != "Survey early adopters" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestUpdateTool_StructuralFieldsAreImmutable(t *testing.T) {
	m := newTestManager(t)
	_, _, task, _ := seedTree(t, m)

	for _, key := range []string{"path", "level", "parent_id", "project"} {
		res, err := NewUpdateTool(m).Handle(context.Background(), makeReq(map[string]any{
			"task_id": task.ID,
			key:       "whatever",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("key %q should be rejected", key)
			continue
		}
		if !strings.Contains(resultText(t, res), "task_move") {
			t.Errorf("rejection for %q should point at task_move: %s", key, resultText(t, res))
		}
	}

	// The reject must not have half-applied anything.
	got, err := m.Get(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path.String() != "001.001.001" {
		t.Errorf("task path changed: %s", got.Path)
	}
}

func TestUpdateTool_ClearsDueDate(t *testing.T) {
	m := newTestManager(t)
	_, _, task, _ := seedTree(t, m)

	res, err := NewUpdateTool(m).Handle(context.Background(), makeReq(map[string]any{
		"task_id": task.ID, "due_date": "2026-09-15",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("set due date failed: %s", resultText(t, res))
	}

	res, err = NewUpdateTool(m).Handle(context.Background(), makeReq(map[string]any{
		"task_id": task.ID, "due_date": "none",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("clear due date failed: %s", resultText(t, res))
	}
	got, err := m.Get(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DueDate != nil {
		t.Errorf("due date not cleared: %v", got.DueDate)
	}
}

func TestDeleteTool(t *testing.T) {
	m := newTestManager(t)
	_, stage, _, _ := seedTree(t, m)

	res, err := NewDeleteTool(m).Handle(context.Background(), makeReq(map[string]any{
		"task_id": stage.ID,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "2 descendants") {
		t.Errorf("delete result: %s", resultText(t, res))
	}
}

// ─── Stats tool ─────────────────────────────────────────────────────────────

func TestStatsTool(t *testing.T) {
	m := newTestManager(t)
	proj, _, task, _ := seedTree(t, m)

	done := hierarchy.StatusDone
	if _, err := m.Update(task.ID, hierarchy.AttributePatch{Status: &done}); err != nil {
		t.Fatal(err)
	}

	res, err := NewStatsTool(m).Handle(context.Background(), makeReq(map[string]any{
		"project": proj.Project,
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	for _, want := range []string{"4 tasks", "todo", "done", "project", "subtask"} {
		if !strings.Contains(text, want) {
			t.Errorf("stats missing %q:\n%s", want, text)
		}
	}
}

func TestStatsTool_EmptyProject(t *testing.T) {
	res, err := NewStatsTool(newTestManager(t)).Handle(context.Background(),
		makeReq(map[string]any{"project": "ghost"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "No tasks") {
		t.Errorf("empty project message: %s", resultText(t, res))
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func TestTagsArg(t *testing.T) {
	req := makeReq(map[string]any{"tags": " web , q4,,urgent "})
	tags := tagsArg(req, "tags")
	want := []string{"web", "q4", "urgent"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", tags, want)
		}
	}
	if tags := tagsArg(makeReq(map[string]any{}), "tags"); tags != nil {
		t.Errorf("missing tags should be nil, got %v", tags)
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"stage":   "Stage",
		"subtask": "Subtask",
		"Stage":   "Stage",
		"1st":     "1st",
		"":        "",
	}
	for in, want := range cases {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	cases := map[hierarchy.Status]string{
		hierarchy.StatusTodo:       "[ ]",
		hierarchy.StatusInProgress: "[>]",
		hierarchy.StatusDone:       "[x]",
		hierarchy.StatusBlocked:    "[!]",
	}
	for status, want := range cases {
		if got := statusIcon(status); got != want {
			t.Errorf("statusIcon(%s) = %q, want %q", status, got, want)
		}
	}
}
