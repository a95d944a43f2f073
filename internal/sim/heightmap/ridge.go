package heightmap

import (
	"math"

	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/rng"
)

// Range raises count ridges along greedy paths between two sampled points.
func (e *Engine) Range(count, height, xs, ys Span) { e.ridges(OpRange, Raise, count, height, xs, ys) }

// Trough lowers count valleys along greedy paths between two sampled points.
func (e *Engine) Trough(count, height, xs, ys Span) {
	e.ridges(OpTrough, Lower, count, height, xs, ys)
}

func (e *Engine) ridges(op Op, dir Direction, count, height, xs, ys Span) {
	g := e.g
	w := float64(g.Size.Width)
	power := LinePower(g.Density)
	keep, maxDist := rangeKeep, w/3
	if dir == Lower {
		keep, maxDist = troughKeep, w/2
	}
	minDist := w / 8

	n := e.resolveCount(count)
	for k := 0; k < n; k++ {
		h := float64(e.drawHeight(height))

		var sx, sy float64
		if dir == Lower {
			var ok bool
			if sx, sy, ok = e.troughStart(xs, ys); !ok {
				e.emit(op, EventStartSearchExhausted, "trough %d starts on land at (%.1f,%.1f)", k, sx, sy)
			}
		} else {
			sx, sy = e.drawPoint(xs, ys)
		}

		ex, ey, ok := e.ridgeEnd(sx, sy, minDist, maxDist)
		if !ok {
			e.emit(op, EventEndSearchExhausted, "%s %d ends at (%.1f,%.1f) outside distance bounds", op, k, ex, ey)
		}

		used := make([]bool, g.NumCells())
		route := e.path(g.CellAt(sx, sy), g.CellAt(ex, ey), used, keep)
		depth := e.carve(route, used, h, power, dir)
		e.prominences(route, depth)
	}
}

// troughStart draws up to searchTries points and returns the first one over
// water. When none is found the last draw is returned with ok false.
func (e *Engine) troughStart(xs, ys Span) (x, y float64, ok bool) {
	g := e.g
	for try := 0; try < searchTries; try++ {
		x, y = e.drawPoint(xs, ys)
		if int(g.Heights[g.CellAt(x, y)]) < grid.OceanHeight {
			return x, y, true
		}
	}
	return x, y, false
}

// ridgeEnd draws up to searchTries end points inside the central band of the
// map and returns the first whose Manhattan distance from (sx, sy) lies in
// [minDist, maxDist].
func (e *Engine) ridgeEnd(sx, sy, minDist, maxDist float64) (x, y float64, ok bool) {
	w := float64(e.g.Size.Width)
	h := float64(e.g.Size.Height)
	for try := 0; try < searchTries; try++ {
		x = rng.Uniform(e.r, w*0.1, w*0.9)
		y = rng.Uniform(e.r, h*0.15, h*0.85)
		d := math.Abs(y-sy) + math.Abs(x-sx)
		if d >= minDist && d <= maxDist {
			return x, y, true
		}
	}
	return x, y, false
}

// carve lowers or raises the route and successive rings around it, shrinking
// the amplitude each ring. It returns the number of rings touched.
func (e *Engine) carve(route []int, used []bool, h, power float64, dir Direction) int {
	g := e.g
	wave := append([]int(nil), route...)
	depth := 0
	for len(wave) > 0 {
		depth++
		for _, c := range wave {
			d := rng.Uniform(e.r, 0.85, h*0.3+0.85)
			g.Heights[c] = clampHeight(float64(g.Heights[c]) + float64(dir)*d)
		}
		h = math.Pow(h, power) - 1
		if h < 2 {
			break
		}
		var next []int
		for _, c := range wave {
			for _, n := range g.Neighbors(c) {
				if used[n] {
					continue
				}
				used[n] = true
				next = append(next, n)
			}
		}
		wave = next
	}
	return depth
}

// prominences descends from every sixth route cell toward its lowest
// neighbor, blending heights so slopes fall off instead of ending in a cliff.
func (e *Engine) prominences(route []int, depth int) {
	g := e.g
	for d, c := range route {
		if d%6 != 0 {
			continue
		}
		cur := c
		for i := 0; i < depth; i++ {
			adj := g.Neighbors(cur)
			if len(adj) == 0 {
				break
			}
			low := adj[0]
			for _, n := range adj[1:] {
				if g.Heights[n] < g.Heights[low] {
					low = n
				}
			}
			g.Heights[low] = uint8((2*int(g.Heights[cur]) + int(g.Heights[low])) / 3)
			cur = low
		}
	}
}
