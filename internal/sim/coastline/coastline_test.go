package coastline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsmith.dev/internal/sim/features"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/gridtest"
	"mapsmith.dev/internal/sim/mesh/sampler"
	"mapsmith.dev/internal/sim/mesh/voronoi"
)

// islandGrid raises a disk of height 50 in the middle of a 120×80 map, with
// an optional lake of height 5 carved into its center.
func islandGrid(t *testing.T, lakeRadius float64) *grid.Grid {
	t.Helper()
	g := gridtest.Sampled(t, geom.Size{Width: 120, Height: 80}, 4, 17)
	center := geom.Point{X: 60, Y: 40}
	for i, p := range g.Points {
		d := math.Sqrt(geom.Dist2(p, center))
		switch {
		case d < lakeRadius:
			g.Heights[i] = 5
		case d < 25:
			g.Heights[i] = 50
		}
	}
	features.Classify(g)
	return g
}

func requireClosedBoundary(t *testing.T, g *grid.Grid, pts []geom.Point) {
	t.Helper()
	require.GreaterOrEqual(t, len(pts), minChain)
	seen := map[geom.Point]bool{}
	for _, p := range pts {
		require.False(t, seen[p], "vertex %v repeated", p)
		seen[p] = true
	}
}

func TestCoastlines_IslandOnly(t *testing.T) {
	g := islandGrid(t, 0)
	require.Len(t, g.Features, 2)

	lines, failed := New(g).Coastlines()
	require.Empty(t, failed)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Feature)
	assert.Equal(t, "island", lines[0].Type)
	requireClosedBoundary(t, g, lines[0].Points)
}

func TestCoastlines_WalkFollowsMesh(t *testing.T) {
	g := islandGrid(t, 0)
	tr := New(g)
	start, ok := tr.featureStart(1)
	require.True(t, ok)

	outside := func(c int) bool { return g.Feature[c] != 1 }
	chain, err := tr.Walk(start, outside, nil)
	require.NoError(t, err)

	vg := g.Voronoi
	for i, v := range chain {
		next := chain[(i+1)%len(chain)]
		assert.Contains(t, vg.Vertices[v].Neighbors[:], next, "step %d", i)

		in, out := false, false
		for _, c := range vg.Vertices[v].Cells {
			if vg.IsRingPoint(c) || outside(c) {
				out = true
			} else {
				in = true
			}
		}
		assert.True(t, in && out, "vertex %d should straddle the coast", v)
	}
}

func TestCoastlines_LakeInsideIsland(t *testing.T) {
	g := islandGrid(t, 8)
	tally := features.Count(g.Features)
	require.Equal(t, features.Tally{Islands: 1, Lakes: 1, Oceans: 1}, tally)

	lines, failed := New(g).Coastlines()
	require.Empty(t, failed)
	require.Len(t, lines, 2)
	types := []string{lines[0].Type, lines[1].Type}
	assert.ElementsMatch(t, []string{"island", "lake"}, types)
	for _, l := range lines {
		requireClosedBoundary(t, g, l.Points)
	}
}

func TestContours_PlateauMatchesCoast(t *testing.T) {
	g := islandGrid(t, 0)
	tr := New(g)

	contours, failed := tr.Contours()
	require.Empty(t, failed)
	require.Len(t, contours, 1)
	assert.Equal(t, 50, contours[0].Height)

	lines, _ := tr.Coastlines()
	require.Len(t, lines, 1)
	assert.ElementsMatch(t, lines[0].Points, contours[0].Points)
}

func TestContours_Cone(t *testing.T) {
	g := gridtest.Sampled(t, geom.Size{Width: 120, Height: 80}, 4, 23)
	center := geom.Point{X: 60, Y: 40}
	for i, p := range g.Points {
		d := math.Sqrt(geom.Dist2(p, center))
		g.Heights[i] = uint8(math.Max(0, 80-2*d))
	}
	features.Classify(g)

	contours, failed := New(g).Contours()
	require.Empty(t, failed)
	require.NotEmpty(t, contours)
	for _, c := range contours {
		assert.GreaterOrEqual(t, c.Height, grid.OceanHeight)
		assert.LessOrEqual(t, c.Height, grid.MaxHeight)
		requireClosedBoundary(t, g, c.Points)
	}
}

// tinyGraph is a grid with two interior cells and one vertex whose every
// neighbor slot is open.
func tinyGraph(cells [3]int) *grid.Grid {
	vg := &voronoi.Graph{
		NumCells: 2,
		Cells:    []voronoi.Cell{{Vertices: []int{0}}, {Vertices: []int{0}}},
		Vertices: []voronoi.Vertex{{
			Neighbors: [3]int{voronoi.NoVertex, voronoi.NoVertex, voronoi.NoVertex},
			Cells:     cells,
		}},
	}
	layout := sampler.Layout{Spacing: 10, CellsX: 2, CellsY: 1}
	return grid.FromGraph(geom.Size{Width: 20, Height: 10}, 1, layout, make([]geom.Point, 2), nil, vg)
}

func TestWalk_Failures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		g := tinyGraph([3]int{0, 1, 2})
		_, err := New(g).Walk(0, func(c int) bool { return c != 0 }, nil)
		assert.ErrorIs(t, err, ErrWalkOpen)
	})
	t.Run("stuck", func(t *testing.T) {
		g := tinyGraph([3]int{0, 1, 0})
		_, err := New(g).Walk(0, func(int) bool { return false }, nil)
		assert.ErrorIs(t, err, ErrWalkStuck)
	})
	t.Run("cap", func(t *testing.T) {
		g := islandGrid(t, 0)
		tr := New(g)
		tr.Cap = 2
		start, ok := tr.featureStart(1)
		require.True(t, ok)
		chain, err := tr.Walk(start, func(c int) bool { return g.Feature[c] != 1 }, nil)
		assert.ErrorIs(t, err, ErrIterationCap)
		assert.Len(t, chain, 2)
	})
}

func TestCoastlines_FailureIsNotFatal(t *testing.T) {
	g := islandGrid(t, 8)
	tr := New(g)
	tr.Cap = 3

	lines, failed := tr.Coastlines()
	assert.Empty(t, lines)
	require.Len(t, failed, 2)
	for _, f := range failed {
		assert.ErrorIs(t, f.Err, ErrIterationCap)
	}
}
