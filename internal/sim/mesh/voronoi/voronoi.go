// Package voronoi derives the cell/vertex dual graph from a half-edge
// triangulation. Cells are keyed by interior point id and vertices by triangle
// id; both live in flat slices.
//
// A cell is owned by the source point of its outgoing half-edges.
package voronoi

import (
	"errors"
	"fmt"
	"math"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/mesh/delaunay"
)

var (
	ErrEmptyPointSet          = errors.New("voronoi: no interior points")
	ErrMalformedTriangulation = errors.New("voronoi: malformed triangulation")
)

// NoVertex marks a missing neighbor slot on the mesh boundary.
const NoVertex = -1

type Cell struct {
	// Vertices bounding the cell, ordered around its point.
	Vertices []int
	// Adjacent interior cells sharing an edge.
	Adjacent []int
	// Border is set when some incident edge leads to a ring point.
	Border bool
	// Incident is the number of half-edges leaving the point.
	Incident int
}

type Vertex struct {
	Coords geom.Point
	// Neighbors[i] is the vertex across triangle edge i, between Cells[i] and Cells[(i+1)%3].
	Neighbors [3]int
	Cells     [3]int
}

type Graph struct {
	NumCells int
	Cells    []Cell
	Vertices []Vertex
}

// IsRingPoint reports whether point id p is one of the boundary ring points.
func (g *Graph) IsRingPoint(p int) bool { return p >= g.NumCells }

// Polygon returns the ordered vertex coordinates bounding cell i.
func (g *Graph) Polygon(i int) []geom.Point {
	c := g.Cells[i]
	out := make([]geom.Point, len(c.Vertices))
	for k, v := range c.Vertices {
		out[k] = g.Vertices[v].Coords
	}
	return out
}

// Build derives the dual graph. Points with id < numInterior become cells; the
// rest only bound them.
func Build(tr *delaunay.Triangulation, numInterior int) (*Graph, error) {
	if numInterior <= 0 {
		return nil, ErrEmptyPointSet
	}
	if len(tr.Triangles) == 0 || len(tr.Triangles)%3 != 0 || len(tr.Halfedges) != len(tr.Triangles) {
		return nil, fmt.Errorf("%w: %d corners, %d half-edges", ErrMalformedTriangulation, len(tr.Triangles), len(tr.Halfedges))
	}

	g := &Graph{
		NumCells: numInterior,
		Cells:    make([]Cell, numInterior),
		Vertices: make([]Vertex, tr.NumTriangles()),
	}
	builtCell := make([]bool, numInterior)
	builtVertex := make([]bool, tr.NumTriangles())

	for e := range tr.Triangles {
		p := tr.Triangles[e]
		if p < 0 || p >= len(tr.Points) {
			return nil, fmt.Errorf("%w: half-edge %d references point %d", ErrMalformedTriangulation, e, p)
		}
		if p < numInterior && !builtCell[p] {
			c, err := buildCell(tr, e, numInterior)
			if err != nil {
				return nil, err
			}
			g.Cells[p] = c
			builtCell[p] = true
		}

		t := delaunay.TriangleOf(e)
		if !builtVertex[t] {
			v, err := buildVertex(tr, t)
			if err != nil {
				return nil, err
			}
			g.Vertices[t] = v
			builtVertex[t] = true
		}
	}

	for p, ok := range builtCell {
		if !ok {
			return nil, fmt.Errorf("%w: interior point %d is in no triangle", ErrMalformedTriangulation, p)
		}
	}
	return g, nil
}

// buildCell walks the fan of outgoing half-edges around the source of start.
func buildCell(tr *delaunay.Triangulation, start, numInterior int) (Cell, error) {
	var c Cell
	out := start
	for {
		c.Incident++
		c.Vertices = append(c.Vertices, delaunay.TriangleOf(out))
		if q := tr.Triangles[delaunay.Next(out)]; q < numInterior {
			c.Adjacent = append(c.Adjacent, q)
		}

		out = tr.Halfedges[delaunay.Prev(out)]
		if out == -1 {
			return Cell{}, fmt.Errorf("%w: open fan around interior point %d", ErrMalformedTriangulation, tr.Triangles[start])
		}
		if out == start {
			break
		}
		if c.Incident > len(tr.Triangles) {
			return Cell{}, fmt.Errorf("%w: fan around point %d does not close", ErrMalformedTriangulation, tr.Triangles[start])
		}
	}
	c.Border = c.Incident > len(c.Adjacent)
	return c, nil
}

func buildVertex(tr *delaunay.Triangulation, t int) (Vertex, error) {
	cc, err := tr.Circumcenter(t)
	if err != nil {
		return Vertex{}, fmt.Errorf("%w: %v", ErrMalformedTriangulation, err)
	}
	v := Vertex{
		Coords: geom.Point{X: math.Floor(cc.X), Y: math.Floor(cc.Y)},
		Cells:  tr.Corners(t),
	}
	for i := 0; i < 3; i++ {
		v.Neighbors[i] = NoVertex
		if o := tr.Halfedges[3*t+i]; o >= 0 {
			v.Neighbors[i] = delaunay.TriangleOf(o)
		}
	}
	return v, nil
}
