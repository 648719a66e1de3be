package offset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
	"github.com/matzehuels/jigsaw/pkg/puzzle/edge"
	"github.com/matzehuels/jigsaw/pkg/puzzle/piece"
)

func buildPiece(t *testing.T, mode puzzle.Mode, r, c int) geom.Path {
	t.Helper()
	b, err := puzzle.Resolve(puzzle.Config{Width: 600, Height: 600, Rows: 3, Cols: 3, Mode: mode})
	require.NoError(t, err)
	slots := edge.Generate(b, rand.New(rand.NewPCG(9, 9^0xdeadbeef)), edge.DefaultOptions())
	bd := &piece.Builder{Board: b, Slots: slots}
	p, _, err := bd.Build(r, c)
	require.NoError(t, err)
	return p
}

func TestRectOffsetExact(t *testing.T) {
	b, err := puzzle.Resolve(puzzle.Config{Width: 300, Height: 200, Rows: 2, Cols: 3, Mode: puzzle.ModeGrid})
	require.NoError(t, err)
	bd := &piece.Builder{Board: b, Slots: edge.Generate(b, nil, edge.DefaultOptions())}
	a := Adapter{Mode: puzzle.ModeGrid}

	for _, d := range []float64{5, -10, 0.25} {
		for r := 0; r < 2; r++ {
			for c := 0; c < 3; c++ {
				p, _, err := bd.Build(r, c)
				require.NoError(t, err)
				out, err := a.Offset(context.Background(), p, d)
				require.NoError(t, err, "d=%v piece (%d,%d)", d, r, c)

				want := b.CellRect(r, c).Outset(d)
				got := out.Bounds()
				assert.Equal(t, want, got, "d=%v piece (%d,%d)", d, r, c)
				assert.True(t, out.IsClosed(geom.Epsilon))
				assert.Len(t, out.Nodes, 5)
			}
		}
	}
}

func TestRectOffsetCollapse(t *testing.T) {
	p := RectPath(geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(100, 40)})
	_, err := Rect{}.Offset(context.Background(), p, -20)
	assert.True(t, errors.Is(err, errors.ErrCodeOffsetFailure), "got %v", err)
}

func TestRectOffsetRejectsCurves(t *testing.T) {
	p := buildPiece(t, puzzle.ModeTraditional, 1, 1)
	_, err := Rect{}.Offset(context.Background(), p, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeOffsetFailure), "got %v", err)
}

func TestPolylineOffset(t *testing.T) {
	for _, mode := range []puzzle.Mode{puzzle.ModeTraditional, puzzle.ModeRandom} {
		for _, d := range []float64{0.5, -0.5, 2, -2, 5, -5} {
			t.Run(fmt.Sprintf("%s/%g", mode, d), func(t *testing.T) {
				for _, cell := range [][2]int{{0, 0}, {1, 1}, {2, 1}} {
					p := buildPiece(t, mode, cell[0], cell[1])
					out, err := Adapter{Mode: mode}.Offset(context.Background(), p, d)
					require.NoError(t, err, "piece %v", cell)
					assert.True(t, out.IsClosed(geom.Epsilon))
					assert.False(t, out.HasDuplicateAnchors(geom.Epsilon))

					before, after := p.SignedArea(), out.SignedArea()
					assert.Positive(t, after)
					if d > 0 {
						assert.Greater(t, after, before)
					} else {
						assert.Less(t, after, before)
					}

					// The bounding box moves by about d on every side.
					pb, ob := p.GG().BoundingBox(), out.Bounds()
					assert.InDelta(t, pb.Min.X-d, ob.Min.X, 0.75, "piece %v", cell)
					assert.InDelta(t, pb.Max.X+d, ob.Max.X, 0.75, "piece %v", cell)
					assert.InDelta(t, pb.Min.Y-d, ob.Min.Y, 0.75, "piece %v", cell)
					assert.InDelta(t, pb.Max.Y+d, ob.Max.Y, 0.75, "piece %v", cell)
				}
			})
		}
	}
}

func TestPolylineOffsetTightBend(t *testing.T) {
	// A sharp corner followed by a run of short segments, the shape a
	// flattened tab shoulder has next to a piece corner.
	nodes := []geom.Node{geom.CornerAt(geom.Pt(0, 0)), geom.CornerAt(geom.Pt(100, 0))}
	for i := 1; i <= 20; i++ {
		y := float64(i) * 0.1
		nodes = append(nodes, geom.CornerAt(geom.Pt(100-0.02*float64(i*i), y)))
	}
	nodes = append(nodes,
		geom.CornerAt(geom.Pt(92, 100)),
		geom.CornerAt(geom.Pt(0, 100)),
		geom.CornerAt(geom.Pt(0, 0)),
	)
	p := geom.ClosePath(nodes)

	for _, d := range []float64{-3, 3} {
		out, err := Polyline{}.Offset(context.Background(), p, d)
		require.NoError(t, err, "d=%v", d)
		b := out.Bounds()
		assert.InDelta(t, -d, b.Min.Y, 1e-6, "d=%v", d)
		assert.InDelta(t, -d, b.Min.X, 1e-6, "d=%v", d)
	}
}

func TestPolylineOffsetSquare(t *testing.T) {
	p := RectPath(geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(10, 10)})
	out, err := Polyline{}.Offset(context.Background(), p, 1)
	require.NoError(t, err)
	assert.InDelta(t, 144, out.SignedArea(), 1e-9)

	// Counter-clockwise input still grows for positive d.
	ccw := geom.Path{Nodes: geom.Reverse(p.Nodes), Closed: true}
	out, err = Polyline{}.Offset(context.Background(), ccw, 1)
	require.NoError(t, err)
	assert.InDelta(t, 144, math.Abs(out.SignedArea()), 1e-9)
}

func TestPolylineOffsetFolds(t *testing.T) {
	p := buildPiece(t, puzzle.ModeTraditional, 1, 1)
	_, err := Polyline{}.Offset(context.Background(), p, -150)
	assert.True(t, errors.Is(err, errors.ErrCodeOffsetFailure), "got %v", err)
}

func TestAdapterTimeout(t *testing.T) {
	slow := OffsetterFunc(func(ctx context.Context, p geom.Path, d float64) (geom.Path, error) {
		<-ctx.Done()
		return geom.Path{}, ctx.Err()
	})
	a := Adapter{Mode: puzzle.ModeRandom, Curve: slow, Timeout: 10 * time.Millisecond}
	_, err := a.Offset(context.Background(), buildPiece(t, puzzle.ModeRandom, 0, 0), 1)
	assert.True(t, errors.Is(err, errors.ErrCodeOffsetFailure), "got %v", err)
}

func TestAdapterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := OffsetterFunc(func(ctx context.Context, p geom.Path, d float64) (geom.Path, error) {
		<-ctx.Done()
		return geom.Path{}, ctx.Err()
	})
	a := Adapter{Mode: puzzle.ModeTraditional, Curve: slow}
	_, err := a.Offset(ctx, buildPiece(t, puzzle.ModeTraditional, 0, 0), 1)
	assert.True(t, errors.Is(err, errors.ErrCodeCanceled), "got %v", err)
}

func TestAdapterWrapsFailures(t *testing.T) {
	broken := OffsetterFunc(func(context.Context, geom.Path, float64) (geom.Path, error) {
		return geom.Path{}, fmt.Errorf("primitive exploded")
	})
	a := Adapter{Mode: puzzle.ModeTraditional, Curve: broken}
	_, err := a.Offset(context.Background(), buildPiece(t, puzzle.ModeTraditional, 0, 0), 1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOffsetFailure, errors.GetCode(err))
	assert.Contains(t, err.Error(), "primitive exploded")

	_, err = a.Offset(context.Background(), geom.Path{}, math.NaN())
	assert.Equal(t, errors.ErrCodeOffsetFailure, errors.GetCode(err))
}

func TestAdapterDoesNotMutateInput(t *testing.T) {
	p := buildPiece(t, puzzle.ModeRandom, 2, 2)
	before := p.Clone()
	mutate := OffsetterFunc(func(_ context.Context, q geom.Path, _ float64) (geom.Path, error) {
		q.Nodes[0].Anchor = geom.Pt(-1, -1)
		return q, nil
	})
	_, err := Adapter{Mode: puzzle.ModeRandom, Curve: mutate}.Offset(context.Background(), p, 1)
	require.NoError(t, err)
	assert.Equal(t, before, p)
}
