// Package grid holds the shared state of one generation run: sampled points, the
// Voronoi graph, and the per-cell height, feature and coast arrays.
package grid

import (
	"errors"
	"fmt"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/mesh/delaunay"
	"mapsmith.dev/internal/sim/mesh/sampler"
	"mapsmith.dev/internal/sim/mesh/voronoi"
	"mapsmith.dev/internal/sim/rng"
)

const (
	MaxHeight   = 100
	OceanHeight = 20

	MinDensity = 1
	MaxDensity = 10
)

var (
	ErrInvalidDensity = errors.New("grid: density must be in 1..10")
	ErrInvalidSize    = errors.New("grid: invalid map size")
)

// NoFeature marks a cell not yet assigned to a feature.
const NoFeature = -1

type CoastType uint8

const (
	CoastNone CoastType = iota
	CoastBeach
	CoastShallows
)

func (c CoastType) String() string {
	switch c {
	case CoastBeach:
		return "beach"
	case CoastShallows:
		return "shallows"
	default:
		return "none"
	}
}

type FeatureType uint8

const (
	FeatureOcean FeatureType = iota + 1
	FeatureLake
	FeatureIsland
)

func (t FeatureType) String() string {
	switch t {
	case FeatureOcean:
		return "ocean"
	case FeatureLake:
		return "lake"
	case FeatureIsland:
		return "island"
	default:
		return "unknown"
	}
}

type Feature struct {
	ID        int         `json:"id"`
	Land      bool        `json:"land"`
	Border    bool        `json:"border"`
	Type      FeatureType `json:"type"`
	Group     string      `json:"group"`
	Cells     int         `json:"cells"`
	FirstCell int         `json:"first_cell"`
}

type Grid struct {
	Size     geom.Size
	Density  int
	Spacing  float64
	CellsX   int
	CellsY   int
	Points   []geom.Point
	Boundary []geom.Point
	Voronoi  *voronoi.Graph

	Heights  []uint8
	Feature  []int
	Features []Feature
	Coast    []CoastType
}

// New samples points, triangulates them and builds the Voronoi graph. It
// consumes two draws per interior point from r.
func New(size geom.Size, density int, r rng.Source) (*Grid, error) {
	if err := CheckSize(size, density); err != nil {
		return nil, err
	}

	layout := sampler.Plan(size, density)
	boundary := sampler.Boundary(size, layout.Spacing)
	points := sampler.JitteredGrid(size, layout.Spacing, r)
	if len(points) == 0 {
		return nil, voronoi.ErrEmptyPointSet
	}

	all := make([]geom.Point, 0, len(points)+len(boundary))
	all = append(all, points...)
	all = append(all, boundary...)
	tr, err := delaunay.Triangulate(all)
	if err != nil {
		return nil, fmt.Errorf("triangulate: %w", err)
	}
	g, err := voronoi.Build(tr, len(points))
	if err != nil {
		return nil, fmt.Errorf("voronoi: %w", err)
	}

	return FromGraph(size, density, layout, points, boundary, g), nil
}

// CheckSize reports whether a map of this size can be sampled at density:
// both sides positive and a point spacing of at least sampler.MinSpacing.
func CheckSize(size geom.Size, density int) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	if density < MinDensity || density > MaxDensity {
		return fmt.Errorf("%w: got %d", ErrInvalidDensity, density)
	}
	if s := sampler.Plan(size, density).Spacing; s < sampler.MinSpacing {
		return fmt.Errorf("%w: %dx%d at density %d gives point spacing %.2f, need %.0f",
			ErrInvalidSize, size.Width, size.Height, density, s, sampler.MinSpacing)
	}
	return nil
}

// FromGraph wraps an already built graph. Heights start at zero.
func FromGraph(size geom.Size, density int, layout sampler.Layout, points, boundary []geom.Point, g *voronoi.Graph) *Grid {
	gr := &Grid{
		Size:     size,
		Density:  density,
		Spacing:  layout.Spacing,
		CellsX:   layout.CellsX,
		CellsY:   layout.CellsY,
		Points:   points,
		Boundary: boundary,
		Voronoi:  g,
	}
	gr.ResetHeights()
	gr.ResetFeatures()
	return gr
}

func (g *Grid) NumCells() int { return g.Voronoi.NumCells }

func (g *Grid) Neighbors(i int) []int { return g.Voronoi.Cells[i].Adjacent }

func (g *Grid) IsLand(i int) bool { return g.Heights[i] >= OceanHeight }

func (g *Grid) ResetHeights() {
	g.Heights = make([]uint8, g.NumCells())
}

// ResetFeatures clears the feature labels, feature table and coast types.
func (g *Grid) ResetFeatures() {
	n := g.NumCells()
	g.Feature = make([]int, n)
	for i := range g.Feature {
		g.Feature[i] = NoFeature
	}
	g.Features = nil
	g.Coast = make([]CoastType, n)
}

// CellAt maps a map coordinate to the cell of the regular sampling grid it falls in.
func (g *Grid) CellAt(x, y float64) int {
	cx := int(x / g.Spacing)
	cy := int(y / g.Spacing)
	cx = min(max(cx, 0), g.CellsX-1)
	cy = min(max(cy, 0), g.CellsY-1)
	i := cx + cy*g.CellsX
	if i >= g.NumCells() {
		i = g.NumCells() - 1
	}
	return i
}
