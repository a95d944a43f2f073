package coastline

import (
	"fmt"
	"sort"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
)

// Coastline is the closed outline of one island or lake.
type Coastline struct {
	Feature int          `json:"feature_id"`
	Type    string       `json:"type"`
	Group   string       `json:"group"`
	Points  []geom.Point `json:"points"`
}

// Contour is a closed ring around cells of one elevation.
type Contour struct {
	Height int          `json:"height"`
	Points []geom.Point `json:"points"`
}

// Coastlines traces one outline per island and lake feature. Features that
// cannot be traced are reported and left out.
func (t *Tracer) Coastlines() ([]Coastline, []Failure) {
	g := t.g
	var out []Coastline
	var failed []Failure
	for _, f := range g.Features {
		if f.Type != grid.FeatureIsland && f.Type != grid.FeatureLake {
			continue
		}
		id := f.ID
		outside := func(c int) bool { return g.Feature[c] != id }
		start, ok := t.featureStart(id)
		if !ok {
			failed = append(failed, Failure{Feature: id, Err: ErrNoStartVertex})
			continue
		}
		chain, err := t.Walk(start, outside, nil)
		if err != nil {
			failed = append(failed, Failure{Feature: id, Err: fmt.Errorf("feature %d: %w", id, err)})
			continue
		}
		if len(chain) < minChain {
			continue
		}
		out = append(out, Coastline{Feature: id, Type: f.Type.String(), Group: f.Group, Points: t.Points(chain)})
	}
	return out, failed
}

// featureStart picks the topmost, then leftmost, vertex of the feature that
// also touches a cell outside it.
func (t *Tracer) featureStart(id int) (int, bool) {
	g := t.g
	vg := g.Voronoi
	best := -1
	for c, fid := range g.Feature {
		if fid != id {
			continue
		}
		for _, v := range vg.Cells[c].Vertices {
			touches := false
			for _, vc := range vg.Vertices[v].Cells {
				if vg.IsRingPoint(vc) || g.Feature[vc] != id {
					touches = true
					break
				}
			}
			if !touches {
				continue
			}
			if best < 0 || lessVertex(vg.Vertices[v].Coords, v, vg.Vertices[best].Coords, best) {
				best = v
			}
		}
	}
	return best, best >= 0
}

func lessVertex(a geom.Point, ai int, b geom.Point, bi int) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return ai < bi
}

// Contours traces elevation rings above sea level. Cells are visited from
// lowest to highest; the active band rises by Step each time a higher cell
// is met. Every unconsumed cell at or above the band that borders a lower
// neighbor starts a ring around its own height, consuming every cell of that
// height the walk passes.
func (t *Tracer) Contours() ([]Contour, []Failure) {
	g := t.g
	n := g.NumCells()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return g.Heights[order[a]] < g.Heights[order[b]] })

	step := t.Step
	if step < 1 {
		step = DefaultContourStep
	}
	used := make([]bool, n)
	layer := grid.OceanHeight
	var out []Contour
	var failed []Failure
	for _, c := range order {
		h := int(g.Heights[c])
		if h > layer {
			layer += step
		}
		if layer > grid.MaxHeight {
			break
		}
		if h < layer || used[c] {
			continue
		}
		if !t.hasLowerNeighbor(c, h) {
			continue
		}
		start, ok := t.contourStart(c, h)
		if !ok {
			failed = append(failed, Failure{Feature: grid.NoFeature, Height: h, Err: ErrNoStartVertex})
			continue
		}
		lower := func(x int) bool { return int(g.Heights[x]) < h }
		consume := func(x int) {
			if int(g.Heights[x]) == h {
				used[x] = true
			}
		}
		chain, err := t.Walk(start, lower, consume)
		if err != nil {
			failed = append(failed, Failure{Feature: grid.NoFeature, Height: h, Err: fmt.Errorf("contour %d at cell %d: %w", h, c, err)})
			continue
		}
		if len(chain) < minChain {
			continue
		}
		out = append(out, Contour{Height: h, Points: t.Points(chain)})
	}
	return out, failed
}

func (t *Tracer) hasLowerNeighbor(c, h int) bool {
	for _, a := range t.g.Neighbors(c) {
		if int(t.g.Heights[a]) < h {
			return true
		}
	}
	return false
}

// contourStart returns the first vertex of c that touches a lower interior cell.
func (t *Tracer) contourStart(c, h int) (int, bool) {
	vg := t.g.Voronoi
	for _, v := range vg.Cells[c].Vertices {
		for _, vc := range vg.Vertices[v].Cells {
			if !vg.IsRingPoint(vc) && int(t.g.Heights[vc]) < h {
				return v, true
			}
		}
	}
	return 0, false
}
