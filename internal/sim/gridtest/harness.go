// Package gridtest builds small grids for tests outside the grid package.
package gridtest

import (
	"testing"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/mesh/delaunay"
	"mapsmith.dev/internal/sim/mesh/sampler"
	"mapsmith.dev/internal/sim/mesh/voronoi"
	"mapsmith.dev/internal/sim/rng"
)

// Path returns a grid of len(heights) cells in a single row, each adjacent
// only to its left and right neighbor. Cells are 10 units wide; both end
// cells are marked as border cells.
func Path(heights ...uint8) *grid.Grid {
	n := len(heights)
	g := &voronoi.Graph{NumCells: n, Cells: make([]voronoi.Cell, n)}
	pts := make([]geom.Point, n)
	for i := range g.Cells {
		var adj []int
		if i > 0 {
			adj = append(adj, i-1)
		}
		if i+1 < n {
			adj = append(adj, i+1)
		}
		g.Cells[i] = voronoi.Cell{Adjacent: adj, Border: i == 0 || i == n-1}
		pts[i] = geom.Point{X: float64(i)*10 + 5, Y: 5}
	}
	layout := sampler.Layout{Spacing: 10, CellsX: n, CellsY: 1}
	gr := grid.FromGraph(geom.Size{Width: 10 * n, Height: 10}, 1, layout, pts, nil, g)
	copy(gr.Heights, heights)
	return gr
}

// Sampled builds a real jittered mesh with an explicit spacing, which keeps
// cell counts small enough for exhaustive checks.
func Sampled(t *testing.T, size geom.Size, spacing float64, seed uint64) *grid.Grid {
	t.Helper()

	r := rng.New(seed)
	pts := sampler.JitteredGrid(size, spacing, r)
	boundary := sampler.Boundary(size, spacing)
	all := append(append([]geom.Point{}, pts...), boundary...)
	tr, err := delaunay.Triangulate(all)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	g, err := voronoi.Build(tr, len(pts))
	if err != nil {
		t.Fatalf("voronoi: %v", err)
	}
	layout := sampler.Layout{
		Spacing: spacing,
		CellsX:  int((float64(size.Width) + spacing/2) / spacing),
		CellsY:  int((float64(size.Height) + spacing/2) / spacing),
	}
	return grid.FromGraph(size, 1, layout, pts, boundary, g)
}

// Fill sets every height to h.
func Fill(g *grid.Grid, h uint8) {
	for i := range g.Heights {
		g.Heights[i] = h
	}
}

// Lattice returns a cols×rows grid with 4-neighbor adjacency. heights is row
// major; border marks which cells touch the mesh hull (nil means none).
func Lattice(cols, rows int, heights []uint8, border []bool) *grid.Grid {
	n := cols * rows
	g := &voronoi.Graph{NumCells: n, Cells: make([]voronoi.Cell, n)}
	pts := make([]geom.Point, n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := x + y*cols
			var adj []int
			if y > 0 {
				adj = append(adj, i-cols)
			}
			if x > 0 {
				adj = append(adj, i-1)
			}
			if x+1 < cols {
				adj = append(adj, i+1)
			}
			if y+1 < rows {
				adj = append(adj, i+cols)
			}
			g.Cells[i] = voronoi.Cell{Adjacent: adj, Border: border != nil && border[i]}
			pts[i] = geom.Point{X: float64(x)*10 + 5, Y: float64(y)*10 + 5}
		}
	}
	layout := sampler.Layout{Spacing: 10, CellsX: cols, CellsY: rows}
	gr := grid.FromGraph(geom.Size{Width: 10 * cols, Height: 10 * rows}, 1, layout, pts, nil, g)
	copy(gr.Heights, heights)
	return gr
}
