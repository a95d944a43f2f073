package heightmap

import (
	"math"

	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/rng"
)

// Direction selects whether a blob or ridge raises or lowers terrain.
type Direction int8

const (
	Raise Direction = 1
	Lower Direction = -1
)

// Hill raises count round blobs seeded inside the percentage rectangle.
func (e *Engine) Hill(count, height, xs, ys Span) { e.blobs(OpHill, Raise, count, height, xs, ys) }

// Pit lowers count round blobs seeded inside the percentage rectangle.
func (e *Engine) Pit(count, height, xs, ys Span) { e.blobs(OpPit, Lower, count, height, xs, ys) }

func (e *Engine) blobs(op Op, dir Direction, count, height, xs, ys Span) {
	g := e.g
	power := BlobPower(g.Density)
	n := e.resolveCount(count)
	for k := 0; k < n; k++ {
		h := e.drawHeight(height)
		start := 0
		found := false
		for try := 0; try < searchTries; try++ {
			start = g.CellAt(e.drawPoint(xs, ys))
			cur := int(g.Heights[start])
			if dir == Raise && cur+h <= 90 || dir == Lower && cur >= grid.OceanHeight {
				found = true
				break
			}
		}
		if !found {
			e.emit(op, EventSeedSearchExhausted, "blob %d seeded at cell %d after %d tries", k, start, searchTries)
		}
		change := e.spread(start, h, power, dir)
		for i, c := range change {
			if c == 0 {
				continue
			}
			g.Heights[i] = clampHeight(float64(g.Heights[i]) + float64(dir)*float64(c))
		}
	}
}

// spread grows a blob breadth-first from start. Each ring receives the parent
// delta raised to power and jittered by ±10%; growth stops once a delta drops
// to 1 or less.
func (e *Engine) spread(start, h int, power float64, dir Direction) []int {
	g := e.g
	change := make([]int, g.NumCells())
	change[start] = h
	queue := []int{start}
	for head := 0; head < len(queue); head++ {
		q := queue[head]
		base := math.Pow(float64(change[q]), power)
		if dir == Lower {
			base *= rng.Uniform(e.r, 0.9, 1.1)
		}
		for _, n := range g.Neighbors(q) {
			if change[n] != 0 {
				continue
			}
			change[n] = int(base * rng.Uniform(e.r, 0.9, 1.1))
			if change[n] > 1 {
				queue = append(queue, n)
			}
		}
	}
	return change
}
