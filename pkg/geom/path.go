package geom

import (
	"math"
	"slices"
)

// Kind tells a host how a node's handles relate to each other.
type Kind uint8

const (
	// Corner nodes have independent (usually zero-length) handles.
	Corner Kind = iota
	// Smooth nodes have collinear handles on opposite sides of the anchor.
	Smooth
)

func (k Kind) String() string {
	if k == Smooth {
		return "smooth"
	}
	return "corner"
}

// MarshalText encodes the kind as "corner" or "smooth".
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText accepts "corner" or "smooth".
func (k *Kind) UnmarshalText(b []byte) error {
	if string(b) == "smooth" {
		*k = Smooth
	} else {
		*k = Corner
	}
	return nil
}

// Node is one anchor of a bezier path with absolute in and out handles.
type Node struct {
	Anchor Point `json:"anchor"`
	In     Point `json:"in"`
	Out    Point `json:"out"`
	Kind   Kind  `json:"kind"`
}

// CornerAt returns a corner node at p with zero-length handles.
func CornerAt(p Point) Node {
	return Node{Anchor: p, In: p, Out: p, Kind: Corner}
}

// Reversed returns the node as seen when the path is walked backwards.
func (n Node) Reversed() Node {
	n.In, n.Out = n.Out, n.In
	return n
}

// Reverse returns a new slice tracing the same curve in the opposite
// direction. The input is not modified.
func Reverse(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n.Reversed()
	}
	return out
}

// Path is a piece outline. When Closed is set, the last node repeats the
// first node's anchor so that the final segment returns to the start.
type Path struct {
	Nodes  []Node `json:"nodes"`
	Closed bool   `json:"closed"`
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	return Path{Nodes: slices.Clone(p.Nodes), Closed: p.Closed}
}

// IsClosed reports whether the path is flagged closed and its last anchor
// coincides with the first within eps.
func (p Path) IsClosed(eps float64) bool {
	if !p.Closed || len(p.Nodes) < 2 {
		return false
	}
	return p.Nodes[0].Anchor.Near(p.Nodes[len(p.Nodes)-1].Anchor, eps)
}

// HasDuplicateAnchors reports whether two consecutive nodes sit within eps of
// each other.
func (p Path) HasDuplicateAnchors(eps float64) bool {
	for i := 1; i < len(p.Nodes); i++ {
		if p.Nodes[i-1].Anchor.Near(p.Nodes[i].Anchor, eps) {
			return true
		}
	}
	return false
}

// Bounds returns the bounding box of all anchors and handles, which contains
// the curve itself.
func (p Path) Bounds() Rect {
	if len(p.Nodes) == 0 {
		return Rect{}
	}
	r := Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, n := range p.Nodes {
		for _, q := range [3]Point{n.Anchor, n.In, n.Out} {
			r.Min.X = min(r.Min.X, q.X)
			r.Min.Y = min(r.Min.Y, q.Y)
			r.Max.X = max(r.Max.X, q.X)
			r.Max.Y = max(r.Max.Y, q.Y)
		}
	}
	return r
}

// Translate returns a copy of the path moved by d.
func (p Path) Translate(d Point) Path {
	out := p.Clone()
	for i, n := range out.Nodes {
		out.Nodes[i] = Node{Anchor: n.Anchor.Add(d), In: n.In.Add(d), Out: n.Out.Add(d), Kind: n.Kind}
	}
	return out
}

// IsStraight reports whether the segment from a to b has zero-length handles
// on both ends.
func IsStraight(a, b Node) bool {
	return a.Out == a.Anchor && b.In == b.Anchor
}

// Join appends side to acc, merging side's first node into acc's last node
// when they coincide within eps. The merged node keeps the incoming handle
// of acc and the outgoing handle of side.
func Join(acc, side []Node, eps float64) []Node {
	if len(side) == 0 {
		return acc
	}
	if n := len(acc); n > 0 && acc[n-1].Anchor.Near(side[0].Anchor, eps) {
		acc[n-1].Out = side[0].Out
		acc[n-1].Kind = Corner
		return append(acc, side[1:]...)
	}
	return append(acc, side...)
}

// ClosePath turns a node list whose last anchor equals its first into a
// closed Path, reconciling the handles of the two copies of the start node.
func ClosePath(nodes []Node) Path {
	if n := len(nodes); n >= 2 {
		nodes[0].In = nodes[n-1].In
		nodes[n-1].Out = nodes[0].Out
	}
	return Path{Nodes: nodes, Closed: true}
}
