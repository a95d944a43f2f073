package delaunay

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsmith.dev/internal/sim/geom"
)

func cross(a, b, p geom.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func TestTriangulate_TooFewPoints(t *testing.T) {
	_, err := Triangulate([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	require.ErrorIs(t, err, ErrTooFewPoints)
}

func TestTriangulate_Collinear(t *testing.T) {
	_, err := Triangulate([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}})
	require.ErrorIs(t, err, ErrDegenerate)
}

func TestTriangulate_SquareWithCenter(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 5, Y: 5}}
	tr, err := Triangulate(pts)
	require.NoError(t, err)
	require.Equal(t, 4, tr.NumTriangles())

	hull := 0
	for e, o := range tr.Halfedges {
		if o == -1 {
			hull++
			continue
		}
		assert.Equal(t, e, tr.Halfedges[o], "twin of twin")
		assert.Equal(t, tr.Triangles[e], tr.Triangles[Next(o)])
		assert.Equal(t, tr.Triangles[Next(e)], tr.Triangles[o])
	}
	assert.Equal(t, 4, hull)

	first := 0.0
	for tri := 0; tri < tr.NumTriangles(); tri++ {
		c := tr.Corners(tri)
		assert.Contains(t, c[:], 4, "every triangle fans around the center")
		w := cross(pts[c[0]], pts[c[1]], pts[c[2]])
		require.NotZero(t, w)
		if tri == 0 {
			first = w
		}
		assert.Equal(t, math.Signbit(first), math.Signbit(w), "one winding for all triangles")
	}
}

func TestTriangulate_EmptyCircumcircles(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pts := make([]geom.Point, 300)
	for i := range pts {
		pts[i] = geom.Point{X: r.Float64() * 100, Y: r.Float64() * 100}
	}
	tr, err := Triangulate(pts)
	require.NoError(t, err)

	for e, o := range tr.Halfedges {
		if o >= 0 {
			require.Equal(t, e, tr.Halfedges[o])
		}
	}

	for tri := 0; tri < tr.NumTriangles(); tri++ {
		c := tr.Corners(tri)
		cc, err := tr.Circumcenter(tri)
		require.NoError(t, err)
		r2 := geom.Dist2(cc, pts[c[0]])
		for i, p := range pts {
			if i == c[0] || i == c[1] || i == c[2] {
				continue
			}
			require.GreaterOrEqual(t, geom.Dist2(cc, p), r2*(1-1e-9), "point %d inside circumcircle of %d", i, tri)
		}
	}
}

// Rows of points on shared lines, like the boundary ring, must still close
// every interior fan.
func TestTriangulate_CollinearRing(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	var pts []geom.Point
	for y := 0.5; y < 20; y++ {
		for x := 0.5; x < 20; x++ {
			pts = append(pts, geom.Point{
				X: geom.RoundDecimals(x+0.9*(r.Float64()-0.5), 2),
				Y: geom.RoundDecimals(y+0.9*(r.Float64()-0.5), 2),
			})
		}
	}
	interior := len(pts)
	for x := 0.0; x <= 20; x += 2 {
		pts = append(pts, geom.Point{X: x, Y: -1}, geom.Point{X: x, Y: 21})
	}
	for y := 1.0; y < 20; y += 2 {
		pts = append(pts, geom.Point{X: -1, Y: y}, geom.Point{X: 21, Y: y})
	}
	tr, err := Triangulate(pts)
	require.NoError(t, err)

	seen := make([]bool, len(pts))
	for e, p := range tr.Triangles {
		seen[p] = true
		if p < interior {
			require.NotEqual(t, -1, tr.Halfedges[e], "interior point %d on the hull", p)
		}
	}
	for i, ok := range seen {
		require.True(t, ok, "point %d dropped", i)
	}
	for tri := 0; tri < tr.NumTriangles(); tri++ {
		_, err := tr.Circumcenter(tri)
		require.NoError(t, err, "triangle %d", tri)
	}
}

func TestCircumcenter_RightTriangle(t *testing.T) {
	tr := &Triangulation{
		Points:    []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 2}},
		Triangles: []int{0, 1, 2},
		Halfedges: []int{-1, -1, -1},
	}
	cc, err := tr.Circumcenter(0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, cc.X, 1e-9)
	assert.InDelta(t, 1.0, cc.Y, 1e-9)

	tr.Points[2] = geom.Point{X: 8, Y: 0}
	_, err = tr.Circumcenter(0)
	require.ErrorIs(t, err, ErrDegenerate)
}
