// Package sampler places the generation points: a jittered square grid inside the
// map box and a coarser ring just outside it that closes the edge cells.
package sampler

import (
	"math"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/rng"
)

// CellsPerDensity is the target cell count per density step.
const CellsPerDensity = 10_000

// MinSpacing is the smallest point spacing a map may use. Below it the
// integer-snapped boundary ring reaches the map box and ring points merge.
const MinSpacing = 1.0

type Layout struct {
	Spacing float64
	CellsX  int
	CellsY  int
}

// Plan computes point spacing and the regular-grid dimensions for a map.
func Plan(size geom.Size, density int) Layout {
	desired := float64(CellsPerDensity * density)
	spacing := geom.RoundDecimals(math.Sqrt(float64(size.Width)*float64(size.Height)/desired), 2)
	return Layout{
		Spacing: spacing,
		CellsX:  int(math.Floor((float64(size.Width) + 0.5*spacing) / spacing)),
		CellsY:  int(math.Floor((float64(size.Height) + 0.5*spacing) / spacing)),
	}
}

// JitteredGrid returns one point per grid square, rows outer and columns inner.
// Each point consumes two draws: x jitter then y jitter.
func JitteredGrid(size geom.Size, spacing float64, r rng.Source) []geom.Point {
	if spacing <= 0 {
		return nil
	}
	radius := spacing / 2
	jitter := radius * 0.9
	w := float64(size.Width)
	h := float64(size.Height)

	var pts []geom.Point
	for y := radius; y < h; y += spacing {
		for x := radius; x < w; x += spacing {
			xj := geom.RoundDecimals(x+rng.Uniform(r, -jitter, jitter), 2)
			yj := geom.RoundDecimals(y+rng.Uniform(r, -jitter, jitter), 2)
			pts = append(pts, geom.Point{X: clamp(xj, 0, w), Y: clamp(yj, 0, h)})
		}
	}
	return pts
}

// Boundary returns the ring of points at twice the grid spacing just outside the map box.
func Boundary(size geom.Size, spacing float64) []geom.Point {
	if spacing <= 0 {
		return nil
	}
	offset := math.Round(-spacing)
	bs := spacing * 2
	w := float64(size.Width) - offset*2
	h := float64(size.Height) - offset*2
	lenX := math.Ceil(w/bs) - 1
	lenY := math.Ceil(h/bs) - 1

	var ring []geom.Point
	for i := 0.5; i < lenX; i++ {
		x := math.Ceil(w*i/lenX + offset)
		ring = append(ring, geom.Point{X: x, Y: offset}, geom.Point{X: x, Y: h + offset})
	}
	for i := 0.5; i < lenY; i++ {
		y := math.Ceil(h*i/lenY + offset)
		ring = append(ring, geom.Point{X: offset, Y: y}, geom.Point{X: w + offset, Y: y})
	}
	return ring
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
