package mapgen

import (
	"mapsmith.dev/internal/sim/coastline"
	"mapsmith.dev/internal/sim/geom"
)

// Outputs is the plain-coordinate view handed to renderers.
type Outputs struct {
	Polygons   [][]geom.Point        `json:"polygons,omitempty"`
	Coastlines []coastline.Coastline `json:"coastlines"`
	Contours   []coastline.Contour   `json:"contours"`
}

// Outputs exports the map. Cell polygons are large, so they are only
// included on request.
func (m *Map) Outputs(polygons bool) Outputs {
	out := Outputs{Coastlines: m.Coastlines, Contours: m.Contours}
	if out.Coastlines == nil {
		out.Coastlines = []coastline.Coastline{}
	}
	if out.Contours == nil {
		out.Contours = []coastline.Contour{}
	}
	if polygons {
		vg := m.Grid.Voronoi
		out.Polygons = make([][]geom.Point, vg.NumCells)
		for i := range out.Polygons {
			out.Polygons[i] = vg.Polygon(i)
		}
	}
	return out
}
