// Package coastline traces closed boundaries between classes of cells by
// walking the Voronoi vertex mesh.
package coastline

import (
	"errors"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/mesh/voronoi"
)

var (
	ErrWalkStuck     = errors.New("coastline: no boundary edge leaves vertex")
	ErrWalkOpen      = errors.New("coastline: boundary runs off the mesh")
	ErrIterationCap  = errors.New("coastline: iteration cap reached")
	ErrNoStartVertex = errors.New("coastline: no start vertex")
)

const (
	DefaultIterationCap = 20000
	DefaultContourStep  = 5

	// minChain is the shortest closed chain worth keeping.
	minChain = 3
)

// Tracer walks boundaries on one grid. Fields may be adjusted before use.
type Tracer struct {
	g *grid.Grid

	// Cap bounds the number of vertices a single walk may visit.
	Cap int
	// Step is the elevation band width for contours.
	Step int
}

func New(g *grid.Grid) *Tracer {
	return &Tracer{g: g, Cap: DefaultIterationCap, Step: DefaultContourStep}
}

// Walk follows the boundary between outside and inside cells starting at
// vertex start, until it returns to start. A ring point always counts as
// outside. consume, if set, is called for every interior cell bounding a
// visited vertex.
func (t *Tracer) Walk(start int, outside func(c int) bool, consume func(c int)) ([]int, error) {
	vg := t.g.Voronoi
	out := func(c int) bool { return vg.IsRingPoint(c) || outside(c) }

	var chain []int
	prev, cur := voronoi.NoVertex, start
	for iter := 0; ; iter++ {
		if iter >= t.Cap {
			return chain, ErrIterationCap
		}
		chain = append(chain, cur)
		v := vg.Vertices[cur]
		if consume != nil {
			for _, c := range v.Cells {
				if !vg.IsRingPoint(c) {
					consume(c)
				}
			}
		}

		next, found := voronoi.NoVertex, false
		for i := 0; i < 3; i++ {
			n := v.Neighbors[i]
			if prev != voronoi.NoVertex && n == prev {
				continue
			}
			if out(v.Cells[i]) != out(v.Cells[(i+1)%3]) {
				next, found = n, true
				break
			}
		}
		if !found {
			return chain, ErrWalkStuck
		}
		if next == voronoi.NoVertex {
			return chain, ErrWalkOpen
		}
		if next == start {
			return chain, nil
		}
		prev, cur = cur, next
	}
}

// Points resolves a vertex chain to coordinates.
func (t *Tracer) Points(chain []int) []geom.Point {
	pts := make([]geom.Point, len(chain))
	for i, v := range chain {
		pts[i] = t.g.Voronoi.Vertices[v].Coords
	}
	return pts
}

// Failure records a boundary that could not be traced. Feature is
// grid.NoFeature for contours; Height is zero for coastlines.
type Failure struct {
	Feature int
	Height  int
	Err     error
}
