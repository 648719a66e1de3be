package offset

import (
	"context"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/jigsaw/pkg/errors"
	"github.com/matzehuels/jigsaw/pkg/geom"
)

// Polyline defaults.
const (
	DefaultTolerance  = 0.05
	DefaultMiterLimit = 4.0
)

// Polyline approximates the offset of a curved outline by flattening it
// into a polygon and moving every polygon edge along its normal.
//
// Edges whose offset runs backwards, which happens where |d| exceeds the
// local curvature radius, are dropped and their neighbours extended to
// meet. Remaining crossings are cut at the crossing point, keeping the
// loop with the outline's orientation. Open joins are mitred up to
// MiterLimit·|d| and bevelled beyond. The result is a closed path of corner
// nodes.
//
// The offset is rejected when what is left still folds over itself or
// comes closer to the outline than half of |d|.
type Polyline struct {
	Tolerance  float64 // max distance between curve and polygon; zero uses DefaultTolerance
	MiterLimit float64 // zero uses DefaultMiterLimit
}

// offsetLine is one polygon edge moved along its normal.
type offsetLine struct {
	a, b geom.Point // offset endpoints
	t    geom.Point // unit direction
}

// Offset implements Offsetter.
func (o Polyline) Offset(ctx context.Context, p geom.Path, d float64) (geom.Path, error) {
	tol := o.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	limit := o.MiterLimit
	if limit < 1 {
		limit = DefaultMiterLimit
	}

	pts := dedupe(p.GG().Flatten(tol))
	if len(pts) < 3 {
		return geom.Path{}, errors.New(errors.ErrCodeOffsetFailure, "outline flattens to %d points", len(pts))
	}
	area := polygon(pts).Area()
	if math.Abs(area) < geom.Epsilon {
		return geom.Path{}, errors.New(errors.ErrCodeOffsetFailure, "outline encloses no area")
	}
	// The normals below point outward for positive (clockwise) area.
	dd := d
	if area < 0 {
		dd = -d
	}

	lines := make([]offsetLine, len(pts))
	for i, q := range pts {
		next := pts[(i+1)%len(pts)]
		t := next.Sub(q).Unit()
		n := geom.Pt(t.Y, -t.X).Mul(dd)
		lines[i] = offsetLine{a: q.Add(n), b: next.Add(n), t: t}
	}

	out, err := trimReversed(ctx, lines, math.Abs(d)*limit)
	if err != nil {
		return geom.Path{}, err
	}
	if out, err = removeLoops(ctx, out, area); err != nil {
		return geom.Path{}, err
	}
	if err := validate(ctx, pts, out, area, d); err != nil {
		return geom.Path{}, err
	}

	nodes := make([]geom.Node, 0, len(out)+1)
	for _, q := range out {
		nodes = append(nodes, geom.CornerAt(q))
	}
	nodes = append(nodes, geom.CornerAt(out[0]))
	return geom.ClosePath(nodes), nil
}

// join connects the end of prev to the start of cur. Converging lines meet
// at their intersection; diverging ones are mitred, or bevelled when the
// mitre would reach further than maxMiter.
func join(prev, cur offsetLine, maxMiter float64) []geom.Point {
	den := cross(prev.t, cur.t)
	if math.Abs(den) < 1e-9 {
		if prev.b.Near(cur.a, geom.Epsilon) {
			return []geom.Point{cur.a}
		}
		return []geom.Point{prev.b, cur.a}
	}
	u := cross(cur.a.Sub(prev.a), cur.t) / den
	m := prev.a.Add(prev.t.Mul(u))
	if ext := m.Sub(prev.b); ext.Dot(prev.t) > 0 && ext.Len() > maxMiter {
		return []geom.Point{prev.b, cur.a}
	}
	return []geom.Point{m}
}

// trimReversed joins the offset lines into a polygon, repeatedly dropping
// lines whose joined segment points against their own direction.
func trimReversed(ctx context.Context, lines []offsetLine, maxMiter float64) ([]geom.Point, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := len(lines)
		if n < 3 {
			return nil, errors.New(errors.ErrCodeOffsetFailure, "offset collapses the outline")
		}
		joins := make([][]geom.Point, n)
		for k := range lines {
			joins[k] = join(lines[(k+n-1)%n], lines[k], maxMiter)
		}

		drop := make([]bool, n)
		dropped := 0
		for k, l := range lines {
			start, end := joins[k][len(joins[k])-1], joins[(k+1)%n][0]
			if end.Sub(start).Dot(l.t) >= 0 {
				continue
			}
			// Neighbours are left for the next round so that every drop
			// is judged against up-to-date joins.
			if (k > 0 && drop[k-1]) || (k == n-1 && drop[0]) {
				continue
			}
			drop[k] = true
			dropped++
		}

		if dropped == 0 {
			out := make([]geom.Point, 0, n+n/8)
			for _, j := range joins {
				out = append(out, j...)
			}
			if out = dropRepeats(out); len(out) < 3 {
				return nil, errors.New(errors.ErrCodeOffsetFailure, "offset collapses the outline")
			}
			return out, nil
		}

		kept := lines[:0:0]
		for k, l := range lines {
			if !drop[k] {
				kept = append(kept, l)
			}
		}
		lines = kept
	}
}

// removeLoops cuts the polygon at each crossing and keeps the side whose
// orientation matches area, or the larger side when both match.
func removeLoops(ctx context.Context, pts []geom.Point, area float64) ([]geom.Point, error) {
	for {
		i, j, ok := selfIntersection(ctx, pts)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ok {
			return pts, nil
		}
		n := len(pts)
		x := intersection(pts[i], pts[i+1], pts[j], pts[(j+1)%n])

		inner := make([]geom.Point, 0, j-i+1)
		inner = append(inner, x)
		inner = append(inner, pts[i+1:j+1]...)
		outer := make([]geom.Point, 0, n-(j-i)+1)
		outer = append(outer, pts[:i+1]...)
		outer = append(outer, x)
		outer = append(outer, pts[j+1:]...)

		ai, ao := polygon(inner).Area(), polygon(outer).Area()
		innerOK := math.Signbit(ai) == math.Signbit(area)
		outerOK := math.Signbit(ao) == math.Signbit(area)
		switch {
		case outerOK && !innerOK:
			pts = outer
		case innerOK && !outerOK:
			pts = inner
		case math.Abs(ao) >= math.Abs(ai):
			pts = outer
		default:
			pts = inner
		}
		if pts = dropRepeats(pts); len(pts) < 3 {
			return nil, errors.New(errors.ErrCodeOffsetFailure, "offset collapses the outline")
		}
	}
}

// validate rejects results that are not finite, changed orientation, did
// not grow or shrink as asked, cross themselves, sit on the wrong side of
// src or come closer to it than |d|/2.
func validate(ctx context.Context, src, out []geom.Point, area, d float64) error {
	for _, q := range out {
		if !q.IsFinite() {
			return errors.New(errors.ErrCodeOffsetFailure, "offset produced a non-finite point")
		}
	}
	got := polygon(out).Area()
	if math.Signbit(got) != math.Signbit(area) {
		return errors.New(errors.ErrCodeOffsetFailure, "offset %g inverted the outline", d)
	}
	if (d > 0 && math.Abs(got) <= math.Abs(area)) || (d < 0 && math.Abs(got) >= math.Abs(area)) {
		return errors.New(errors.ErrCodeOffsetFailure, "offset %g did not change the enclosed area as expected", d)
	}
	if i, j, ok := selfIntersection(ctx, out); ok {
		return errors.New(errors.ErrCodeOffsetFailure, "offset %g folds the outline (segments %d and %d cross)", d, i, j)
	} else if err := ctx.Err(); err != nil {
		return err
	}

	outline := polygon(src)
	minGap := math.Abs(d) / 2
	for k, q := range out {
		if k%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if gap := distance(src, q); gap < minGap {
			return errors.New(errors.ErrCodeOffsetFailure, "offset %g passes within %.3g of the outline", d, gap)
		}
		if math.Abs(d) > 1e-6 && outline.Contains(gg.Pt(q.X, q.Y)) != (d < 0) {
			return errors.New(errors.ErrCodeOffsetFailure, "offset %g left a point on the wrong side of the outline", d)
		}
	}
	return nil
}

// distance is the shortest distance from q to the closed polygon pts.
func distance(pts []geom.Point, q geom.Point) float64 {
	best := math.Inf(1)
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		ab := b.Sub(a)
		s := 0.0
		if l2 := ab.Dot(ab); l2 > 0 {
			s = min(max(q.Sub(a).Dot(ab)/l2, 0), 1)
		}
		best = min(best, q.Dist(a.Add(ab.Mul(s))))
	}
	return best
}

// intersection is where the lines through a-b and c-e meet. Callers only
// pass segments that cross.
func intersection(a, b, c, e geom.Point) geom.Point {
	r, s := b.Sub(a), e.Sub(c)
	u := cross(c.Sub(a), s) / cross(r, s)
	return a.Add(r.Mul(u))
}

// selfIntersection looks for two non-adjacent polygon edges that cross.
func selfIntersection(ctx context.Context, pts []geom.Point) (int, int, bool) {
	n := len(pts)
	for i := 0; i < n; i++ {
		if i%64 == 0 && ctx.Err() != nil {
			return 0, 0, false
		}
		a, b := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			c, e := pts[j], pts[(j+1)%n]
			if crosses(a, b, c, e) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func crosses(a, b, c, d geom.Point) bool {
	if max(a.X, b.X) < min(c.X, d.X) || max(c.X, d.X) < min(a.X, b.X) ||
		max(a.Y, b.Y) < min(c.Y, d.Y) || max(c.Y, d.Y) < min(a.Y, b.Y) {
		return false
	}
	d1 := cross(b.Sub(a), c.Sub(a))
	d2 := cross(b.Sub(a), d.Sub(a))
	d3 := cross(d.Sub(c), a.Sub(c))
	d4 := cross(d.Sub(c), b.Sub(c))
	return d1*d2 < 0 && d3*d4 < 0
}

func cross(u, v geom.Point) float64 { return u.X*v.Y - u.Y*v.X }

// dedupe converts gg points and drops repeats.
func dedupe(in []gg.Point) []geom.Point {
	out := make([]geom.Point, len(in))
	for i, q := range in {
		out[i] = geom.Pt(q.X, q.Y)
	}
	return dropRepeats(out)
}

// dropRepeats removes consecutive repeats in place, including a closing
// point equal to the first.
func dropRepeats(pts []geom.Point) []geom.Point {
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Near(p, geom.Epsilon) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Near(out[0], geom.Epsilon) {
		out = out[:len(out)-1]
	}
	return out
}

// polygon builds a closed gg path through pts.
func polygon(pts []geom.Point) *gg.Path {
	p := gg.NewPath()
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.LineTo(q.X, q.Y)
	}
	p.Close()
	return p
}
