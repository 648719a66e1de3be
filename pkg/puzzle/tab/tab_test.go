package tab

import (
	"math"
	"testing"

	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
)

func TestBuildEdgeStraight(t *testing.T) {
	nodes := BuildEdge(geom.Pt(0, 0), geom.Pt(100, 0), nil, 1, 80)
	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2", len(nodes))
	}
	for _, n := range nodes {
		if n.Kind != geom.Corner || n.In != n.Anchor || n.Out != n.Anchor {
			t.Errorf("node %+v is not a zero-handle corner", n)
		}
	}
	if !geom.IsStraight(nodes[0], nodes[1]) {
		t.Error("perimeter edge is not straight")
	}
}

func TestBuildEdgeTab(t *testing.T) {
	slot := &edge.Slot{TabSign: 1}
	nodes := BuildEdge(geom.Pt(0, 0), geom.Pt(90, 0), slot, 1, 40)
	if len(nodes) != 6 {
		t.Fatalf("len = %d, want 6", len(nodes))
	}

	// Walking left to right, n = (0, -1): a positive sign bulges to y < 0.
	want := []geom.Point{
		geom.Pt(0, 0), geom.Pt(30, 0), geom.Pt(30, -10),
		geom.Pt(60, -10), geom.Pt(60, 0), geom.Pt(90, 0),
	}
	for i, w := range want {
		if !nodes[i].Anchor.Near(w, 1e-9) {
			t.Errorf("anchor %d = %v, want %v", i, nodes[i].Anchor, w)
		}
	}
	for i := 1; i <= 4; i++ {
		n := nodes[i]
		if n.Kind != geom.Smooth {
			t.Errorf("node %d kind = %v, want smooth", i, n.Kind)
		}
		// Handles along the baseline, on opposite sides of the anchor.
		if n.In.Y != n.Anchor.Y || n.Out.Y != n.Anchor.Y || !(n.In.X < n.Anchor.X && n.Out.X > n.Anchor.X) {
			t.Errorf("node %d handles %v/%v not tangent to baseline", i, n.In, n.Out)
		}
	}
	// A1's handles are a third of the distances to P0 and A2.
	if got := nodes[1].Anchor.X - nodes[1].In.X; math.Abs(got-10) > 1e-9 {
		t.Errorf("A1 in-handle length = %v, want 10", got)
	}
	if got := nodes[1].Out.X - nodes[1].Anchor.X; math.Abs(got-10.0/3) > 1e-9 {
		t.Errorf("A1 out-handle length = %v, want 10/3", got)
	}
	if nodes[0].Kind != geom.Corner || nodes[5].Kind != geom.Corner {
		t.Error("endpoints must be corners")
	}
}

func TestBuildEdgeSignFlips(t *testing.T) {
	slot := &edge.Slot{TabSign: 1}
	up := BuildEdge(geom.Pt(0, 0), geom.Pt(90, 0), slot, 1, 40)
	down := BuildEdge(geom.Pt(0, 0), geom.Pt(90, 0), slot, -1, 40)
	if up[2].Anchor.Y != -10 || down[2].Anchor.Y != 10 {
		t.Errorf("plateau y = %v / %v, want -10 / 10", up[2].Anchor.Y, down[2].Anchor.Y)
	}
}

func TestBuildEdgeJitter(t *testing.T) {
	slot := &edge.Slot{TabSign: 1, DepthJitter: 2, ShiftJitter: 0.1}
	start, end := geom.Pt(10, 0), geom.Pt(10, 90) // walking down: n = (1, 0)
	nodes := BuildEdge(start, end, slot, 1, 40)

	if nodes[0].Anchor != start || nodes[5].Anchor != end {
		t.Fatal("corners moved off the baseline")
	}
	// Body lifted by DepthJitter and shifted by 0.1·L along the edge.
	if !nodes[1].Anchor.Near(geom.Pt(12, 39), 1e-9) {
		t.Errorf("A1 = %v, want (12, 39)", nodes[1].Anchor)
	}
	if !nodes[3].Anchor.Near(geom.Pt(22, 69), 1e-9) {
		t.Errorf("A3 = %v, want (22, 69)", nodes[3].Anchor)
	}
}

func TestBuildEdgeNoDuplicateAnchors(t *testing.T) {
	slot := &edge.Slot{TabSign: -1, DepthJitter: -1.5}
	p := geom.Path{Nodes: BuildEdge(geom.Pt(0, 0), geom.Pt(50, 50), slot, -1, 30)}
	if p.HasDuplicateAnchors(geom.Epsilon) {
		t.Error("consecutive anchors coincide")
	}
}

func TestReversedEdgeIsMirror(t *testing.T) {
	slot := &edge.Slot{TabSign: 1, DepthJitter: 1.25, ShiftJitter: -0.05}
	a, b := geom.Pt(0, 100), geom.Pt(120, 100)
	fwd := BuildEdge(a, b, slot, 1, 100)
	back := geom.Reverse(fwd)
	if back[0].Anchor != b || back[len(back)-1].Anchor != a {
		t.Fatal("reversed edge does not run from end to start")
	}
	for i := range fwd {
		j := len(fwd) - 1 - i
		if fwd[i].Anchor != back[j].Anchor || fwd[i].In != back[j].Out || fwd[i].Out != back[j].In {
			t.Errorf("node %d is not mirrored exactly", i)
		}
	}
}

func TestDegenerate(t *testing.T) {
	tests := []struct {
		edgeLen, perp float64
		want          bool
	}{
		{100, 100, false},
		{100, 600, false},
		{100, 601, true},
		{10, 1000, true},
		{0, 10, true},
	}
	for _, tt := range tests {
		if got := Degenerate(tt.edgeLen, tt.perp); got != tt.want {
			t.Errorf("Degenerate(%v, %v) = %v, want %v", tt.edgeLen, tt.perp, got, tt.want)
		}
	}
}
