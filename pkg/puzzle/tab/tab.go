// Package tab turns one piece edge into bezier nodes.
//
// A perimeter edge is a straight segment. An interior edge carries a
// rounded rectangular bump spanning the middle third of the baseline and
// reaching depth D = perp/4, where perp is the piece dimension
// perpendicular to the edge:
//
//	        A2 ───── A3
//	        │        │
//	P0 ──── A1       A4 ──── P5
//
// The sketch shows a left-to-right walk with sign +1, which bulges upward
// on screen.
//
// The four shoulder anchors A1..A4 are smooth nodes whose handles run along
// the baseline direction, which rounds the shoulders. The whole bump is
// translated by the slot's DepthJitter across the edge and by its
// ShiftJitter along the edge; the corners P0 and P5 stay on the baseline.
//
// [BuildEdge] is a pure function. For a shared edge, only the owning cell
// calls it; the neighbour reverses the result with geom.Reverse, which makes
// the two outlines exact mirror images along the shared edge.
package tab

import (
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
)

// MaxDepthRatio is the largest tab depth D, relative to the edge length,
// that BuildEdge accepts without self-intersection. Each rounded shoulder
// bows about 0.096·D along the edge, so the shoulders would meet inside the
// middle third at D/L ≈ 1.73.
const MaxDepthRatio = 1.5

// Depth returns the tab depth for a piece dimension perpendicular to the
// edge.
func Depth(perp float64) float64 { return perp / 4 }

// Degenerate reports whether a tab on an edge of length edgeLen, with perp
// the piece dimension across it, would self-intersect.
func Degenerate(edgeLen, perp float64) bool {
	if edgeLen <= 0 {
		return true
	}
	return Depth(perp)/edgeLen > MaxDepthRatio
}

// BuildEdge returns the nodes from start to end. A nil slot (or a zero
// sign) yields a straight segment of two corner nodes.
//
// Otherwise sign selects the bump direction relative to the walk: with
// t the unit direction from start to end and n = (t.Y, -t.X), a positive
// sign bulges along n. For a clockwise walk in y-down coordinates n points
// out of the piece.
func BuildEdge(start, end geom.Point, slot *edge.Slot, sign int, perp float64) []geom.Node {
	if slot == nil || sign == 0 {
		return []geom.Node{geom.CornerAt(start), geom.CornerAt(end)}
	}

	base := end.Sub(start)
	length := base.Len()
	t := base.Unit()
	n := geom.Pt(t.Y, -t.X)

	bump := n.Mul(float64(sign) * Depth(perp))
	lift := n.Mul(slot.DepthJitter)
	u0, u1 := 1.0/3+slot.ShiftJitter, 2.0/3+slot.ShiftJitter

	a1 := start.Add(t.Mul(length * u0)).Add(lift)
	a2 := a1.Add(bump)
	a4 := start.Add(t.Mul(length * u1)).Add(lift)
	a3 := a4.Add(bump)

	anchors := [...]geom.Point{start, a1, a2, a3, a4, end}
	nodes := make([]geom.Node, len(anchors))
	nodes[0] = geom.CornerAt(start)
	nodes[len(anchors)-1] = geom.CornerAt(end)
	for i := 1; i < len(anchors)-1; i++ {
		p := anchors[i]
		nodes[i] = geom.Node{
			Anchor: p,
			In:     p.Sub(t.Mul(p.Dist(anchors[i-1]) / 3)),
			Out:    p.Add(t.Mul(p.Dist(anchors[i+1]) / 3)),
			Kind:   geom.Smooth,
		}
	}
	return nodes
}
