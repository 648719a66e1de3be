package piece

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
)

func newBuilder(t *testing.T, cfg puzzle.Config, seed uint64) *Builder {
	t.Helper()
	b, err := puzzle.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	return &Builder{Board: b, Slots: edge.Generate(b, rng, edge.DefaultOptions())}
}

func TestGridRectangles(t *testing.T) {
	bd := newBuilder(t, puzzle.Config{Width: 300, Height: 200, Rows: 2, Cols: 3, Mode: puzzle.ModeGrid}, 1)

	tests := []struct {
		r, c     int
		min, max geom.Point
	}{
		{0, 0, geom.Pt(0, 0), geom.Pt(100, 100)},
		{1, 2, geom.Pt(200, 100), geom.Pt(300, 200)},
	}
	for _, tt := range tests {
		p, warns, err := bd.Build(tt.r, tt.c)
		if err != nil {
			t.Fatalf("Build(%d,%d) error = %v", tt.r, tt.c, err)
		}
		if len(warns) != 0 {
			t.Errorf("Build(%d,%d) warnings = %v", tt.r, tt.c, warns)
		}
		want := []geom.Point{tt.min, {X: tt.max.X, Y: tt.min.Y}, tt.max, {X: tt.min.X, Y: tt.max.Y}, tt.min}
		if len(p.Nodes) != len(want) {
			t.Fatalf("Build(%d,%d) has %d nodes, want %d", tt.r, tt.c, len(p.Nodes), len(want))
		}
		for i, w := range want {
			if p.Nodes[i].Anchor != w {
				t.Errorf("Build(%d,%d) node %d = %v, want %v", tt.r, tt.c, i, p.Nodes[i].Anchor, w)
			}
		}
	}

	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			p, _, _ := bd.Build(r, c)
			bounds := p.Bounds()
			if math.Abs(bounds.Width()-100) > 1e-9 || math.Abs(bounds.Height()-100) > 1e-9 {
				t.Errorf("piece (%d,%d) is %v×%v, want 100×100", r, c, bounds.Width(), bounds.Height())
			}
		}
	}
}

func TestBoundariesClosed(t *testing.T) {
	for _, mode := range puzzle.Modes {
		bd := newBuilder(t, puzzle.Config{Width: 640, Height: 480, Rows: 4, Cols: 5, Mode: mode}, 11)
		for r := 0; r < 4; r++ {
			for c := 0; c < 5; c++ {
				p, _, err := bd.Build(r, c)
				if err != nil {
					t.Fatalf("%s: Build(%d,%d) error = %v", mode, r, c, err)
				}
				if !p.IsClosed(geom.Epsilon) {
					t.Errorf("%s: piece (%d,%d) is not closed", mode, r, c)
				}
				if p.HasDuplicateAnchors(geom.Epsilon) {
					t.Errorf("%s: piece (%d,%d) has consecutive duplicate anchors", mode, r, c)
				}
				if area := p.SignedArea(); area <= 0 {
					t.Errorf("%s: piece (%d,%d) area = %v, want clockwise", mode, r, c, area)
				}
			}
		}
	}
}

func TestAreasSumToBoard(t *testing.T) {
	for _, mode := range []puzzle.Mode{puzzle.ModeTraditional, puzzle.ModeRandom} {
		bd := newBuilder(t, puzzle.Config{Width: 400, Height: 300, Rows: 3, Cols: 4, Mode: mode}, 5)
		var total float64
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				p, _, _ := bd.Build(r, c)
				total += p.SignedArea()
			}
		}
		if math.Abs(total-400*300) > 1e-6 {
			t.Errorf("%s: total area = %v, want %v", mode, total, 400*300)
		}
	}
}

func TestSharedEdgesMatch(t *testing.T) {
	for _, mode := range []puzzle.Mode{puzzle.ModeTraditional, puzzle.ModeRandom} {
		bd := newBuilder(t, puzzle.Config{Width: 500, Height: 400, Rows: 4, Cols: 5, Mode: mode}, 23)
		for r := 0; r < 4; r++ {
			for c := 0; c < 5; c++ {
				if c < 4 {
					assertMirrored(t, bd, r, c, Right, r, c+1, Left)
				}
				if r < 3 {
					assertMirrored(t, bd, r, c, Bottom, r+1, c, Top)
				}
			}
		}
	}
}

func assertMirrored(t *testing.T, bd *Builder, r1, c1 int, s1 Side, r2, c2 int, s2 Side) {
	t.Helper()
	a, _, err := bd.Side(r1, c1, s1)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := bd.Side(r2, c2, s2)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 6 || len(a) != len(b) {
		t.Fatalf("(%d,%d) %s has %d nodes, (%d,%d) %s has %d", r1, c1, s1, len(a), r2, c2, s2, len(b))
	}

	// Same curve in absolute coordinates, traversed the other way.
	for i, n := range geom.Reverse(b) {
		if n != a[i] {
			t.Errorf("(%d,%d) %s node %d = %+v, neighbour has %+v", r1, c1, s1, i, a[i], n)
		}
	}

	// In each cell's own frame (u along the walk, v out of the cell) one
	// side is the reflection of the other across the baseline.
	ua, va := localFrame(a)
	ub, vb := localFrame(b)
	length := a[0].Anchor.Dist(a[len(a)-1].Anchor)
	for i := range a {
		j := len(a) - 1 - i
		if math.Abs(ua[i]-(length-ub[j])) > 1e-9 || math.Abs(va[i]+vb[j]) > 1e-9 {
			t.Errorf("(%d,%d) %s node %d: (%v,%v) is not the reflection of (%v,%v)", r1, c1, s1, i, ua[i], va[i], ub[j], vb[j])
		}
	}
	if math.Abs(va[2]) < 1e-9 {
		t.Errorf("(%d,%d) %s has no tab", r1, c1, s1)
	}
}

func localFrame(nodes []geom.Node) (u, v []float64) {
	start := nodes[0].Anchor
	t := nodes[len(nodes)-1].Anchor.Sub(start).Unit()
	n := geom.Pt(t.Y, -t.X)
	for _, node := range nodes {
		d := node.Anchor.Sub(start)
		u = append(u, d.Dot(t))
		v = append(v, d.Dot(n))
	}
	return u, v
}

func TestPerimeterStraight(t *testing.T) {
	bd := newBuilder(t, puzzle.Config{Width: 300, Height: 300, Rows: 3, Cols: 3, Mode: puzzle.ModeRandom}, 3)
	for _, tt := range []struct {
		r, c int
		s    Side
	}{{0, 1, Top}, {1, 2, Right}, {2, 0, Bottom}, {1, 0, Left}} {
		nodes, _, err := bd.Side(tt.r, tt.c, tt.s)
		if err != nil {
			t.Fatal(err)
		}
		if len(nodes) != 2 || !geom.IsStraight(nodes[0], nodes[1]) {
			t.Errorf("(%d,%d) %s is not a straight perimeter edge", tt.r, tt.c, tt.s)
		}
	}
}

func TestDescribe(t *testing.T) {
	b := puzzle.Board{Width: 30, Height: 30, Rows: 3, Cols: 3}
	p := Describe(b, 0, 2)
	want := [4]bool{false, false, true, true}
	for i, ref := range p.Edges {
		if ref.Interior != want[i] {
			t.Errorf("Describe(0,2) %s interior = %v, want %v", ref.Side, ref.Interior, want[i])
		}
	}
	if p.Edges[Left].Key != edge.Right(0, 1) {
		t.Errorf("left key = %+v, want the right edge of (0,1)", p.Edges[Left].Key)
	}
}

func TestDegenerateEdge(t *testing.T) {
	cfg := puzzle.Config{Width: 100, Height: 2000, Rows: 2, Cols: 10, Mode: puzzle.ModeTraditional}

	bd := newBuilder(t, cfg, 1)
	_, _, err := bd.Build(1, 3)
	if !errors.Is(err, errors.ErrCodeDegenerateEdge) {
		t.Fatalf("Build() error = %v, want DEGENERATE_EDGE", err)
	}
	if r, c, ok := errors.CellOf(err); !ok || r != 1 || c != 3 {
		t.Errorf("CellOf() = %d,%d,%v, want 1,3,true", r, c, ok)
	}

	bd.Policy = DegenerateWarn
	p, warns, err := bd.Build(1, 3)
	if err != nil {
		t.Fatalf("Build() with warn policy error = %v", err)
	}
	if len(warns) != 1 || warns[0].Code != errors.ErrCodeDegenerateEdge || warns[0].Row != 1 || warns[0].Col != 3 {
		t.Errorf("warnings = %+v, want one DEGENERATE_EDGE for (1,3)", warns)
	}
	if !p.IsClosed(geom.Epsilon) {
		t.Error("path not closed under warn policy")
	}

	// The neighbour straightens the same edge, so the pair still tiles.
	above, _, _ := bd.Side(0, 3, Bottom)
	below, _, _ := bd.Side(1, 3, Top)
	if len(above) != 2 || len(below) != 2 {
		t.Errorf("straightened edges have %d and %d nodes, want 2", len(above), len(below))
	}
}

func TestBuildOutsideBoard(t *testing.T) {
	bd := newBuilder(t, puzzle.Config{Width: 10, Height: 10, Rows: 1, Cols: 1}, 1)
	if _, _, err := bd.Build(1, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Build(1,0) error = %v, want INVALID_INPUT", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", DegenerateFail, false},
		{"fail", DegenerateFail, false},
		{"WARN", DegenerateWarn, false},
		{"skip", DegenerateFail, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
