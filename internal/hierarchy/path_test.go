package hierarchy_test

import (
	"errors"
	"testing"

	"github.com/HendryAvila/treeline/internal/hierarchy"
)

func mustParse(t *testing.T, s string) hierarchy.Path {
	t.Helper()
	p, err := hierarchy.ParsePath(s)
	if err != nil {
		t.Fatalf("ParsePath(%q) error: %v", s, err)
	}
	return p
}

// ─── Encode / decode ────────────────────────────────────────────────────────

func TestPathString_ZeroPadded(t *testing.T) {
	cases := []struct {
		path hierarchy.Path
		want string
	}{
		{hierarchy.Path{1}, "001"},
		{hierarchy.Path{1, 2, 3}, "001.002.003"},
		{hierarchy.Path{10}, "010"},
		{hierarchy.Path{1, 42, 100}, "001.042.100"},
		{hierarchy.Path{999}, "999"},
	}
	for _, c := range cases {
		if got := c.path.String(); got != c.want {
			t.Errorf("Path%v.String() = %q, want %q", []uint(c.path), got, c.want)
		}
	}
}

func TestPathString_SortStabilityPastTen(t *testing.T) {
	// Under naive rendering, "10" sorts before "9". The fixed-width form
	// must keep sibling 9 before sibling 10 lexicographically.
	nine := hierarchy.Path{1, 9}.String()
	ten := hierarchy.Path{1, 10}.String()
	if !(nine < ten) {
		t.Errorf("%q should sort before %q", nine, ten)
	}
}

func TestParsePath_Valid(t *testing.T) {
	p := mustParse(t, "001.002.010")
	want := hierarchy.Path{1, 2, 10}
	if !p.Equal(want) {
		t.Errorf("ParsePath = %v, want %v", p, want)
	}
	// Unpadded input decodes too — padding is a rendering concern.
	p = mustParse(t, "1.2.10")
	if !p.Equal(want) {
		t.Errorf("ParsePath unpadded = %v, want %v", p, want)
	}
}

func TestParsePath_Malformed(t *testing.T) {
	for _, s := range []string{"", "abc", "001.xyz", "001..002", "001.-2", "001.2.5000000000000"} {
		_, err := hierarchy.ParsePath(s)
		if !errors.Is(err, hierarchy.ErrMalformedPath) {
			t.Errorf("ParsePath(%q) error = %v, want ErrMalformedPath", s, err)
		}
	}
}

func TestParsePath_ZeroSegment(t *testing.T) {
	_, err := hierarchy.ParsePath("001.000")
	if !errors.Is(err, hierarchy.ErrMalformedPath) {
		t.Errorf("zero segment error = %v, want ErrMalformedPath", err)
	}
}

// ─── Ancestry ───────────────────────────────────────────────────────────────

func TestIsAncestorOf(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"001", "001.002", true},
		{"001", "001.002.003", true},
		{"001.002", "001.002.003", true},
		{"001", "001", false},          // not its own ancestor
		{"001.002", "001.003", false},  // sibling
		{"001.002", "001", false},      // reversed
		{"002", "001.002", false},      // common suffix, different root
		{"001.002.003", "001.002", false},
	}
	for _, c := range cases {
		a, b := mustParse(t, c.a), mustParse(t, c.b)
		if got := a.IsAncestorOf(b); got != c.want {
			t.Errorf("%s.IsAncestorOf(%s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestChildAndDepth(t *testing.T) {
	p := mustParse(t, "001.002")
	child := p.Child(7)
	if child.String() != "001.002.007" {
		t.Errorf("Child = %s, want 001.002.007", child)
	}
	if child.Depth() != 3 {
		t.Errorf("Depth = %d, want 3", child.Depth())
	}
	if child.Segment() != 7 {
		t.Errorf("Segment = %d, want 7", child.Segment())
	}
	// The parent must not be modified.
	if p.String() != "001.002" {
		t.Errorf("Child mutated receiver: %s", p)
	}
}

// ─── Rebase ─────────────────────────────────────────────────────────────────

func TestRebase(t *testing.T) {
	from := mustParse(t, "001.001.001")
	to := mustParse(t, "001.002.001")

	// The moved root itself.
	got, err := from.Rebase(from, to)
	if err != nil {
		t.Fatalf("Rebase error: %v", err)
	}
	if got.String() != "001.002.001" {
		t.Errorf("root rebase = %s, want 001.002.001", got)
	}

	// A descendant keeps its suffix.
	desc := mustParse(t, "001.001.001.004")
	got, err = desc.Rebase(from, to)
	if err != nil {
		t.Fatalf("Rebase error: %v", err)
	}
	if got.String() != "001.002.001.004" {
		t.Errorf("descendant rebase = %s, want 001.002.001.004", got)
	}
}

func TestRebase_NotUnderFrom(t *testing.T) {
	p := mustParse(t, "001.003")
	_, err := p.Rebase(mustParse(t, "001.001"), mustParse(t, "002"))
	if err == nil {
		t.Error("expected error rebasing a path outside the from-prefix")
	}
}
