// Package offset grows or shrinks piece outlines by a fixed distance.
//
// Grid pieces are axis-aligned rectangles and are offset exactly by [Rect].
// Curved pieces go through an [Offsetter]; the default [Polyline] flattens
// the bezier outline with gogpu/gg, offsets the resulting polygon and trims
// the loops that tight bends leave behind. Exact bezier offsetting is not
// attempted.
//
// A positive distance grows the outline on every side, a negative one
// shrinks it. Every failure is reported as OFFSET_FAILURE so callers can
// keep the un-offset outline for that piece and carry on.
package offset

import (
	"context"
	"time"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
	"github.com/matzehuels/jigsaw/pkg/puzzle"
)

// DefaultTimeout bounds a single curved offset.
const DefaultTimeout = 2 * time.Second

// Offsetter offsets one closed outline by d.
type Offsetter interface {
	Offset(ctx context.Context, p geom.Path, d float64) (geom.Path, error)
}

// OffsetterFunc adapts a function to the Offsetter interface.
type OffsetterFunc func(ctx context.Context, p geom.Path, d float64) (geom.Path, error)

// Offset calls f(ctx, p, d).
func (f OffsetterFunc) Offset(ctx context.Context, p geom.Path, d float64) (geom.Path, error) {
	return f(ctx, p, d)
}

// Adapter picks the offset strategy for a board mode and enforces the
// per-piece time limit on curved offsets.
type Adapter struct {
	Mode    puzzle.Mode
	Curve   Offsetter     // nil uses Polyline{}
	Timeout time.Duration // zero uses DefaultTimeout
}

// Offset returns p offset by d. Errors carry OFFSET_FAILURE unless the
// parent context was canceled, which yields CANCELED.
func (a Adapter) Offset(ctx context.Context, p geom.Path, d float64) (geom.Path, error) {
	if err := errors.ValidateFinite("offset_distance", d); err != nil {
		return geom.Path{}, errors.Wrap(errors.ErrCodeOffsetFailure, err, "offset rejected")
	}
	if !a.Mode.Curved() {
		return Rect{}.Offset(ctx, p, d)
	}

	curve := a.Curve
	if curve == nil {
		curve = Polyline{}
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		path geom.Path
		err  error
	}
	done := make(chan result, 1)
	go func() {
		out, err := curve.Offset(tctx, p.Clone(), d)
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return geom.Path{}, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "offset canceled")
			}
			if errors.Is(res.err, errors.ErrCodeOffsetFailure) {
				return geom.Path{}, res.err
			}
			return geom.Path{}, errors.Wrap(errors.ErrCodeOffsetFailure, res.err, "offset failed")
		}
		return res.path, nil
	case <-tctx.Done():
		if ctx.Err() != nil {
			return geom.Path{}, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "offset canceled")
		}
		return geom.Path{}, errors.Wrap(errors.ErrCodeOffsetFailure, tctx.Err(), "offset timed out after %s", timeout)
	}
}

// Rect offsets axis-aligned rectangles exactly.
type Rect struct{}

// Offset moves each side of the rectangle outward by d.
func (Rect) Offset(_ context.Context, p geom.Path, d float64) (geom.Path, error) {
	r, ok := rectOf(p)
	if !ok {
		return geom.Path{}, errors.New(errors.ErrCodeOffsetFailure, "outline is not an axis-aligned rectangle")
	}
	out := r.Outset(d)
	if out.Width() <= 0 || out.Height() <= 0 {
		return geom.Path{}, errors.New(errors.ErrCodeOffsetFailure, "offset %g collapses a %g×%g rectangle", d, r.Width(), r.Height())
	}
	return RectPath(out), nil
}

// RectPath returns the closed clockwise outline of r, starting at r.Min.
func RectPath(r geom.Rect) geom.Path {
	return geom.ClosePath([]geom.Node{
		geom.CornerAt(r.Min),
		geom.CornerAt(geom.Pt(r.Max.X, r.Min.Y)),
		geom.CornerAt(r.Max),
		geom.CornerAt(geom.Pt(r.Min.X, r.Max.Y)),
		geom.CornerAt(r.Min),
	})
}

func rectOf(p geom.Path) (geom.Rect, bool) {
	if !p.IsClosed(geom.Epsilon) || len(p.Nodes) != 5 {
		return geom.Rect{}, false
	}
	for i := 1; i < len(p.Nodes); i++ {
		a, b := p.Nodes[i-1], p.Nodes[i]
		if !geom.IsStraight(a, b) {
			return geom.Rect{}, false
		}
		if a.Anchor.X != b.Anchor.X && a.Anchor.Y != b.Anchor.Y {
			return geom.Rect{}, false
		}
	}
	r := p.Bounds()
	return r, r.Width() > 0 && r.Height() > 0
}
