// Package hierarchy implements the task tree engine: a strict 4-level
// hierarchy (project → stage → task → subtask) persisted as materialized
// paths, with structural mutation (create-at-level, re-parenting with
// cascading path rewrite) and tree reconstruction for display.
//
// The package is split along dependency order: the path codec and level
// machine are pure, the Repository interface abstracts persistence, and
// Manager composes them into the public operation surface.
package hierarchy

import (
	"fmt"
	"strconv"
	"strings"
)

// PathSeparator joins path segments in the stored text form.
const PathSeparator = "."

// segmentWidth is the zero-padded width of a rendered segment. Fixed-width
// rendering keeps stored paths lexicographically sortable: without it,
// "10" sorts before "9" and sibling order breaks past nine children.
const segmentWidth = 3

// Path is a materialized path: the ordered segment chain from the root to
// a task. Each segment is a positive sibling number under its parent.
// A project has one segment, a subtask four.
type Path []uint

// ParsePath decodes a dot-joined path string. It returns ErrMalformedPath
// for empty strings, non-numeric segments, and zero-valued segments.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	parts := strings.Split(s, PathSeparator)
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q in %q", ErrMalformedPath, part, s)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: zero segment in %q", ErrMalformedPath, s)
		}
		p = append(p, uint(n))
	}
	return p, nil
}

// String renders the path in its stored form: fixed-width, zero-padded,
// dot-joined (e.g. "001.002.010").
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = fmt.Sprintf("%0*d", segmentWidth, seg)
	}
	return strings.Join(parts, PathSeparator)
}

// Depth is the number of segments. Depth 1 is a project root; the engine
// never stores a path deeper than MaxDepth.
func (p Path) Depth() int {
	return len(p)
}

// Segment returns the last segment — the task's sibling number.
func (p Path) Segment() uint {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// Child returns a new path with one segment appended. The receiver is not
// modified.
func (p Path) Child(segment uint) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = segment
	return child
}

// IsAncestorOf reports whether p is a strict prefix of other. A path is
// not its own ancestor.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	for i, seg := range p {
		if other[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, seg := range p {
		if other[i] != seg {
			return false
		}
	}
	return true
}

// Rebase replaces the from-prefix of p with to, preserving the suffix.
// It is the core of the move cascade: every descendant of a moved task is
// rebased from the old subtree root onto the new one. p must equal from
// or have it as an ancestor.
func (p Path) Rebase(from, to Path) (Path, error) {
	if !from.Equal(p) && !from.IsAncestorOf(p) {
		return nil, fmt.Errorf("%w: %s is not under %s", ErrMalformedPath, p, from)
	}
	rebased := make(Path, 0, len(to)+len(p)-len(from))
	rebased = append(rebased, to...)
	rebased = append(rebased, p[len(from):]...)
	return rebased, nil
}
