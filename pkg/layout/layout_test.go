package layout

import (
	"testing"

	"synapse/pkg/models"
)

func branchTree() []*models.BranchNode {
	// root with two children, one of which has a child of its own
	return []*models.BranchNode{
		{ID: "root"},
		{ID: "a", ParentID: "root"},
		{ID: "b", ParentID: "root"},
		{ID: "a1", ParentID: "a"},
	}
}

func TestComputeEmpty(t *testing.T) {
	res := Compute(nil, Horizontal)
	if len(res.Positions) != 0 {
		t.Fatalf("expected no positions, got %d", len(res.Positions))
	}
	if len(res.Edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(res.Edges))
	}
}

func TestComputeHorizontalDepth(t *testing.T) {
	res := Compute(branchTree(), Horizontal)
	if len(res.Positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(res.Positions))
	}
	// depth drives X: root=0, children one step, grandchild two
	step := NodeWidth + HorizontalGap
	if got := res.Positions["root"].X; got != 0 {
		t.Fatalf("root X = %v, want 0", got)
	}
	if got := res.Positions["a"].X; got != step {
		t.Fatalf("a X = %v, want %v", got, step)
	}
	if got := res.Positions["a1"].X; got != 2*step {
		t.Fatalf("a1 X = %v, want %v", got, 2*step)
	}
}

func TestComputeParentCentered(t *testing.T) {
	res := Compute(branchTree(), Horizontal)
	// root spans its children, so its Y sits at the midpoint of the
	// space the subtree occupies
	aTop := res.Positions["a"].Y
	bTop := res.Positions["b"].Y
	if aTop >= bTop {
		t.Fatalf("expected a above b: a=%v b=%v", aTop, bTop)
	}
	rootY := res.Positions["root"].Y
	if rootY <= aTop || rootY >= bTop {
		t.Fatalf("root Y %v not between children %v and %v", rootY, aTop, bTop)
	}
}

func TestComputeSiblingsDoNotOverlap(t *testing.T) {
	branches := []*models.BranchNode{
		{ID: "r"},
		{ID: "c1", ParentID: "r"},
		{ID: "c2", ParentID: "r"},
		{ID: "c3", ParentID: "r"},
	}
	res := Compute(branches, Horizontal)
	ys := []float64{res.Positions["c1"].Y, res.Positions["c2"].Y, res.Positions["c3"].Y}
	for i := 1; i < len(ys); i++ {
		if ys[i]-ys[i-1] < NodeHeight+VerticalGap {
			t.Fatalf("siblings too close: %v then %v", ys[i-1], ys[i])
		}
	}
}

func TestComputeVerticalSwapsAxes(t *testing.T) {
	h := Compute(branchTree(), Horizontal)
	v := Compute(branchTree(), Vertical)
	// in vertical orientation depth drives Y instead of X
	if v.Positions["root"].Y != 0 {
		t.Fatalf("vertical root Y = %v, want 0", v.Positions["root"].Y)
	}
	if v.Positions["a"].Y != NodeHeight+VerticalGap {
		t.Fatalf("vertical a Y = %v, want %v", v.Positions["a"].Y, NodeHeight+VerticalGap)
	}
	// sibling order is preserved across orientations
	if (h.Positions["a"].Y < h.Positions["b"].Y) != (v.Positions["a"].X < v.Positions["b"].X) {
		t.Fatalf("sibling order differs between orientations")
	}
}

func TestComputeUnknownParentIsRoot(t *testing.T) {
	branches := []*models.BranchNode{
		{ID: "x", ParentID: "missing"},
		{ID: "y"},
	}
	res := Compute(branches, Horizontal)
	if len(res.Edges) != 0 {
		t.Fatalf("expected no edges for unknown parents, got %d", len(res.Edges))
	}
	// both are roots at depth 0, separated by twice the sibling gap
	if res.Positions["x"].X != 0 || res.Positions["y"].X != 0 {
		t.Fatalf("roots not at depth 0: %+v", res.Positions)
	}
	dy := res.Positions["y"].Y - res.Positions["x"].Y
	if dy != NodeHeight+2*VerticalGap {
		t.Fatalf("root separation = %v, want %v", dy, NodeHeight+2*VerticalGap)
	}
}

func TestApply(t *testing.T) {
	branches := branchTree()
	res := Compute(branches, Horizontal)
	Apply(branches, res)
	for _, b := range branches {
		if b.Position != res.Positions[b.ID] {
			t.Fatalf("branch %s position %+v not applied", b.ID, b.Position)
		}
	}
	// unknown branches keep their stored position
	extra := &models.BranchNode{ID: "zz", Position: models.Position{X: 7, Y: 9}}
	Apply([]*models.BranchNode{extra}, res)
	if extra.Position.X != 7 || extra.Position.Y != 9 {
		t.Fatalf("unplaced branch position changed: %+v", extra.Position)
	}
}
