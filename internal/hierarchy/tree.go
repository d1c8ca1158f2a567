package hierarchy

import "sort"

// TaskNode wraps a Task with its resolved children for traversal and
// display. Children are computed by BuildForest, never persisted.
type TaskNode struct {
	*Task
	Children []*TaskNode `json:"children,omitempty"`
}

// ViewOptions are presentation filters for BuildForest. They prune the
// returned forest without touching the underlying rows.
type ViewOptions struct {
	// IncludeDone keeps done tasks in the forest. When false, a done task
	// is pruned together with its subtree.
	IncludeDone bool

	// MaxDepth limits the forest to the first MaxDepth levels relative to
	// the returned roots. Zero means no limit.
	MaxDepth int
}

// BuildForest reconstructs the nested tree from a flat row set. Rows
// whose parent is absent from the set become roots, so the same function
// serves both whole-project views and subtree views.
//
// Assembly is index-then-recurse: one pass builds an id→node map and a
// parent→children index, a second pass links them. O(n log n) for the
// sibling sort, never the quadratic repeated-scan shape.
func BuildForest(rows []*Task, opts ViewOptions) []*TaskNode {
	if len(rows) == 0 {
		return nil
	}

	nodes := make(map[string]*TaskNode, len(rows))
	for _, row := range rows {
		nodes[row.ID] = &TaskNode{Task: row}
	}

	var roots []*TaskNode
	for _, row := range rows {
		node := nodes[row.ID]
		if parent, ok := nodes[row.ParentID]; ok && row.ParentID != "" {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	sortSiblings(roots)
	for _, node := range nodes {
		sortSiblings(node.Children)
	}

	if !opts.IncludeDone {
		roots = pruneDone(roots)
	}
	if opts.MaxDepth > 0 {
		roots = clampDepth(roots, opts.MaxDepth)
	}
	return roots
}

func sortSiblings(nodes []*TaskNode) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i].Path, nodes[j].Path
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}

// pruneDone drops done nodes and their subtrees, rebuilding child slices
// so the original nodes' slices are not shared with the filtered view.
func pruneDone(nodes []*TaskNode) []*TaskNode {
	var kept []*TaskNode
	for _, node := range nodes {
		if node.Status == StatusDone {
			continue
		}
		kept = append(kept, &TaskNode{
			Task:     node.Task,
			Children: pruneDone(node.Children),
		})
	}
	return kept
}

func clampDepth(nodes []*TaskNode, depth int) []*TaskNode {
	if depth <= 0 {
		return nil
	}
	var clamped []*TaskNode
	for _, node := range nodes {
		clamped = append(clamped, &TaskNode{
			Task:     node.Task,
			Children: clampDepth(node.Children, depth-1),
		})
	}
	return clamped
}

// Walk visits every node in the forest depth-first, parents before
// children.
func Walk(nodes []*TaskNode, fn func(node *TaskNode, depth int)) {
	var walk func(nodes []*TaskNode, depth int)
	walk = func(nodes []*TaskNode, depth int) {
		for _, node := range nodes {
			fn(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(nodes, 0)
}
