package voronoi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/mesh/delaunay"
	"mapsmith.dev/internal/sim/mesh/sampler"
	"mapsmith.dev/internal/sim/rng"
)

// hexFan is a hand-built triangulation: point 0 at the origin surrounded by six
// ring points, one triangle per hexagon side.
func hexFan() *delaunay.Triangulation {
	tr := &delaunay.Triangulation{Points: []geom.Point{{X: 0, Y: 0}}}
	for k := 0; k < 6; k++ {
		a := float64(k) * math.Pi / 3
		tr.Points = append(tr.Points, geom.Point{X: 10 * math.Cos(a), Y: 10 * math.Sin(a)})
	}
	for k := 0; k < 6; k++ {
		tr.Triangles = append(tr.Triangles, 0, 1+k, 1+(k+1)%6)
		tr.Halfedges = append(tr.Halfedges, 3*((k+5)%6)+2, -1, 3*((k+1)%6))
	}
	return tr
}

func TestBuild_HexFan(t *testing.T) {
	g, err := Build(hexFan(), 1)
	require.NoError(t, err)
	require.Len(t, g.Cells, 1)
	require.Len(t, g.Vertices, 6)

	c := g.Cells[0]
	assert.Len(t, c.Vertices, 6)
	assert.Empty(t, c.Adjacent, "ring points are never adjacent cells")
	assert.True(t, c.Border)
	assert.Equal(t, 6, c.Incident)

	seen := map[int]bool{}
	for _, v := range c.Vertices {
		seen[v] = true
	}
	assert.Len(t, seen, 6, "one vertex per incident triangle")

	for k, v := range g.Vertices {
		assert.Equal(t, [3]int{0, 1 + k, 1 + (k+1)%6}, v.Cells)
		assert.Equal(t, (k+5)%6, v.Neighbors[0])
		assert.Equal(t, NoVertex, v.Neighbors[1])
		assert.Equal(t, (k+1)%6, v.Neighbors[2])
		assert.Equal(t, math.Floor(v.Coords.X), v.Coords.X)
		assert.Equal(t, math.Floor(v.Coords.Y), v.Coords.Y)
	}
}

func TestBuild_OpenFanIsMalformed(t *testing.T) {
	tr := hexFan()
	tr.Halfedges[0] = -1
	tr.Halfedges[3*5+2] = -1
	_, err := Build(tr, 1)
	require.ErrorIs(t, err, ErrMalformedTriangulation)
}

func TestBuild_EmptyPointSet(t *testing.T) {
	_, err := Build(hexFan(), 0)
	require.ErrorIs(t, err, ErrEmptyPointSet)
}

func sampledGraph(t *testing.T) *Graph {
	t.Helper()
	size := geom.Size{Width: 120, Height: 80}
	spacing := 8.0
	r := rng.New(11)
	pts := sampler.JitteredGrid(size, spacing, r)
	all := append(append([]geom.Point{}, pts...), sampler.Boundary(size, spacing)...)
	tr, err := delaunay.Triangulate(all)
	require.NoError(t, err)
	g, err := Build(tr, len(pts))
	require.NoError(t, err)
	return g
}

func TestBuild_SampledMeshProperties(t *testing.T) {
	g := sampledGraph(t)

	borders := 0
	for i, c := range g.Cells {
		require.Equal(t, c.Incident > len(c.Adjacent), c.Border, "border flag of cell %d", i)
		require.Len(t, c.Vertices, c.Incident)
		if c.Border {
			borders++
			continue
		}
		for _, n := range c.Adjacent {
			assert.Contains(t, g.Cells[n].Adjacent, i, "adjacency %d-%d should be symmetric", i, n)
		}
	}
	assert.Greater(t, borders, 0)
	assert.Less(t, borders, len(g.Cells))

	for vi, v := range g.Vertices {
		for i, n := range v.Neighbors {
			if n == NoVertex {
				continue
			}
			a, b := v.Cells[i], v.Cells[(i+1)%3]
			assert.Contains(t, g.Vertices[n].Cells[:], a, "vertex %d slot %d", vi, i)
			assert.Contains(t, g.Vertices[n].Cells[:], b, "vertex %d slot %d", vi, i)
		}
	}
}
