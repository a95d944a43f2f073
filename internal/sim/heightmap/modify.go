package heightmap

import (
	"math"

	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/rng"
)

// Add shifts every height inside band by delta. On the land band results
// floor at sea level (20), so adding a negative delta lowers land without
// turning it into water.
func (e *Engine) Add(band Band, delta float64) {
	land := band.landRelative()
	for i, h := range e.g.Heights {
		if !band.Contains(int(h)) {
			continue
		}
		v := float64(h) + delta
		if land && v < grid.OceanHeight {
			v = grid.OceanHeight
		}
		e.g.Heights[i] = clampHeight(math.Floor(v))
	}
}

// Multiply scales every height inside band by factor. On the land band the
// scale pivots on sea level so land stays land.
func (e *Engine) Multiply(band Band, factor float64) {
	land := band.landRelative()
	for i, h := range e.g.Heights {
		if !band.Contains(int(h)) {
			continue
		}
		v := float64(h) * factor
		if land {
			v = float64(int(h)-grid.OceanHeight)*factor + grid.OceanHeight
		}
		e.g.Heights[i] = clampHeight(math.Floor(v))
	}
}

// Smooth blends each cell toward the mean of itself and its neighbors,
// reading only the heights from before the pass. Larger force keeps more of
// the original height.
func (e *Engine) Smooth(force int) {
	if force < 1 {
		force = 1
	}
	g := e.g
	old := append([]uint8(nil), g.Heights...)
	f := float64(force)
	for i := range old {
		sum := float64(old[i])
		adj := g.Neighbors(i)
		for _, n := range adj {
			sum += float64(old[n])
		}
		mean := sum / float64(len(adj)+1)
		g.Heights[i] = clampHeight(math.Floor((float64(old[i])*(f-1) + mean) / f))
	}
}

// Strait cuts a water channel across the map, roughly through its middle,
// along the given axis. Width is capped at a third of the horizontal cell
// count; a width below one is kept only with probability equal to it.
func (e *Engine) Strait(width Span, axis Axis) {
	g := e.g
	raw := rng.Uniform(e.r, width.Lo, width.Hi)
	if limit := float64(g.CellsX) / 3; raw > limit {
		raw = limit
	}
	var n int
	if raw < 1 {
		if e.r.Float64() < 1-raw {
			e.emit(OpStrait, EventStraitSkipped, "width %.3f rounded to zero", raw)
			return
		}
		n = 1
	} else {
		n = e.roundStochastic(raw)
	}

	w := float64(g.Size.Width)
	h := float64(g.Size.Height)
	var sx, sy, ex, ey float64
	if axis == Vertical {
		sx = math.Floor(e.r.Float64()*w*0.4 + w*0.3)
		sy = 5
		ex = math.Floor(w - sx - w*0.1 + e.r.Float64()*w*0.2)
		ey = h - 5
	} else {
		sx = 5
		sy = math.Floor(e.r.Float64()*h*0.4 + h*0.3)
		ex = w - 5
		ey = math.Floor(h - sy - h*0.1 + e.r.Float64()*h*0.2)
	}

	used := make([]bool, g.NumCells())
	ring := e.path(g.CellAt(sx, sy), g.CellAt(ex, ey), make([]bool, g.NumCells()), straitKeep)
	step := 0.1 / float64(n)
	for rem := n; rem > 0; rem-- {
		exp := 0.9 - step*float64(rem)
		var next []int
		for _, c := range ring {
			for _, a := range g.Neighbors(c) {
				if used[a] {
					continue
				}
				used[a] = true
				next = append(next, a)
				v := math.Pow(float64(g.Heights[a]), exp)
				if v > grid.MaxHeight {
					v = 5
				}
				g.Heights[a] = clampHeight(math.Floor(v))
			}
		}
		ring = next
	}
}
