// Package delaunay triangulates a point set and exposes the result as a flat
// half-edge structure.
//
// Half-edge e belongs to triangle e/3 and runs from point Triangles[e] to point
// Triangles[Next(e)]. Halfedges[e] is the opposite half-edge in the adjacent
// triangle, or -1 on the hull. All triangles share one winding.
package delaunay

import (
	"errors"
	"fmt"
	"math"

	delaunator "github.com/fogleman/delaunay"

	"mapsmith.dev/internal/sim/geom"
)

var (
	ErrTooFewPoints = errors.New("delaunay: at least three points are required")
	ErrDegenerate   = errors.New("delaunay: degenerate triangle")
)

type Triangulation struct {
	Points    []geom.Point
	Triangles []int
	Halfedges []int
}

func Next(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

func Prev(e int) int {
	if e%3 == 0 {
		return e + 2
	}
	return e - 1
}

func TriangleOf(e int) int { return e / 3 }

func (t *Triangulation) NumTriangles() int { return len(t.Triangles) / 3 }

// Corners returns the three point ids of triangle tri in half-edge order.
func (t *Triangulation) Corners(tri int) [3]int {
	return [3]int{t.Triangles[3*tri], t.Triangles[3*tri+1], t.Triangles[3*tri+2]}
}

// Circumcenter returns the circumcenter of triangle tri.
func (t *Triangulation) Circumcenter(tri int) (geom.Point, error) {
	c := t.Corners(tri)
	cc, ok := circumcenter(t.Points[c[0]], t.Points[c[1]], t.Points[c[2]])
	if !ok {
		return geom.Point{}, fmt.Errorf("%w: triangle %d", ErrDegenerate, tri)
	}
	return cc, nil
}

// Triangulate builds the Delaunay triangulation of points. Point ids in the
// result are indices into points. Exact duplicates are dropped by the
// triangulator and end up in no triangle.
func Triangulate(points []geom.Point) (*Triangulation, error) {
	if len(points) < 3 {
		return nil, ErrTooFewPoints
	}
	in := make([]delaunator.Point, len(points))
	for i, p := range points {
		in[i] = delaunator.Point{X: p.X, Y: p.Y}
	}
	res, err := delaunator.Triangulate(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if len(res.Triangles) == 0 {
		return nil, fmt.Errorf("%w: all points collinear", ErrDegenerate)
	}
	return &Triangulation{
		Points:    points,
		Triangles: res.Triangles,
		Halfedges: res.Halfedges,
	}, nil
}

func circumcenter(a, b, c geom.Point) (geom.Point, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return geom.Point{}, false
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	return geom.Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}
