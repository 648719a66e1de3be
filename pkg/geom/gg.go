package geom

import "github.com/gogpu/gg"

// GG converts the path to a gg.Path so that gg's flattening, area and
// containment routines can be applied to piece outlines.
func (p Path) GG() *gg.Path {
	gp := gg.NewPath()
	if len(p.Nodes) == 0 {
		return gp
	}
	start := p.Nodes[0].Anchor
	gp.MoveTo(start.X, start.Y)
	for i := 1; i < len(p.Nodes); i++ {
		prev, cur := p.Nodes[i-1], p.Nodes[i]
		if IsStraight(prev, cur) {
			gp.LineTo(cur.Anchor.X, cur.Anchor.Y)
			continue
		}
		gp.CubicTo(prev.Out.X, prev.Out.Y, cur.In.X, cur.In.Y, cur.Anchor.X, cur.Anchor.Y)
	}
	if p.Closed {
		gp.Close()
	}
	return gp
}

// SignedArea returns the signed area enclosed by the path as computed by gg.
func (p Path) SignedArea() float64 {
	return p.GG().Area()
}
