package geom

import (
	"strconv"
	"strings"
)

// SVGData encodes the path as SVG path data. Segments with zero-length
// handles on both ends become L commands, everything else C commands.
func (p Path) SVGData() string {
	if len(p.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, p.Nodes[0].Anchor)

	for i := 1; i < len(p.Nodes); i++ {
		prev, cur := p.Nodes[i-1], p.Nodes[i]
		if IsStraight(prev, cur) {
			b.WriteString(" L")
		} else {
			b.WriteString(" C")
			writePoint(&b, prev.Out)
			b.WriteString(" ")
			writePoint(&b, cur.In)
			b.WriteString(" ")
		}
		writePoint(&b, cur.Anchor)
	}
	if p.Closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(FormatNum(p.X))
	b.WriteString(",")
	b.WriteString(FormatNum(p.Y))
}

// FormatNum renders v with at most three decimals and no trailing zeros.
func FormatNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
