package geom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{1.23456, "1.235"},
		{-0.0001, "0"},
		{-2.25, "-2.25"},
		{100, "100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNum(tt.in), "FormatNum(%v)", tt.in)
	}
}

func TestSVGDataSquare(t *testing.T) {
	got := square(10).SVGData()
	assert.Equal(t, "M0,0 L10,0 L10,10 L0,10 L0,0 Z", got)
}

func TestSVGDataCurve(t *testing.T) {
	p := Path{Nodes: []Node{
		{Anchor: Pt(0, 0), In: Pt(0, 0), Out: Pt(1, -1)},
		{Anchor: Pt(4, 0), In: Pt(3, -1), Out: Pt(4, 0)},
	}}
	got := p.SVGData()
	assert.Equal(t, "M0,0 C1,-1 3,-1 4,0", got)
	assert.False(t, strings.HasSuffix(got, "Z"))
	assert.Equal(t, "", Path{}.SVGData())
}

func TestSignedAreaClockwise(t *testing.T) {
	// Top, right, bottom, left in y-down coordinates is clockwise on screen.
	assert.InDelta(t, 100, square(10).SignedArea(), 1e-9)

	ccw := Path{Nodes: Reverse(square(10).Nodes), Closed: true}
	assert.InDelta(t, -100, ccw.SignedArea(), 1e-9)
}
