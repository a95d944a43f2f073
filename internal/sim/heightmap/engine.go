// Package heightmap shapes cell elevations with a small set of stochastic
// operators driven by named templates.
package heightmap

import (
	"fmt"
	"math"

	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/rng"
)

const (
	// searchTries bounds every rejection-sampling loop.
	searchTries = 50

	rangeKeep  = 0.85
	troughKeep = 0.8
	straitKeep = 0.8
)

var blobPowers = [...]float64{0.98, 0.985, 0.987, 0.9892, 0.9911, 0.9921, 0.9934, 0.9942, 0.9946, 0.995}

var linePowers = [...]float64{0.81, 0.82, 0.83, 0.84, 0.855, 0.87, 0.885, 0.91, 0.92, 0.93}

func BlobPower(density int) float64 { return blobPowers[densityIndex(density)] }

func LinePower(density int) float64 { return linePowers[densityIndex(density)] }

func densityIndex(d int) int {
	if d < grid.MinDensity {
		d = grid.MinDensity
	}
	if d > grid.MaxDensity {
		d = grid.MaxDensity
	}
	return d - 1
}

// Event reports a non-fatal fallback taken while applying a step.
type Event struct {
	Op     string `json:"op"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	EventSeedSearchExhausted  = "seed_search_exhausted"
	EventEndSearchExhausted   = "end_search_exhausted"
	EventStartSearchExhausted = "start_search_exhausted"
	EventStraitSkipped        = "strait_skipped"
)

// Engine applies operators to a grid's heights. All randomness comes from r,
// in a fixed order per operator.
type Engine struct {
	g *grid.Grid
	r rng.Source

	// OnEvent, if set, receives fallbacks (exhausted searches, skipped straits).
	OnEvent func(Event)
}

func New(g *grid.Grid, r rng.Source) *Engine {
	return &Engine{g: g, r: r}
}

func (e *Engine) Grid() *grid.Grid { return e.g }

func (e *Engine) emit(op Op, kind, format string, args ...any) {
	if e.OnEvent == nil {
		return
	}
	e.OnEvent(Event{Op: op.String(), Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Run resets heights to zero and applies each step of t in order.
func (e *Engine) Run(t Template) error {
	e.g.ResetHeights()
	for i, st := range t.Steps {
		if err := e.Apply(st); err != nil {
			return fmt.Errorf("template %s step %d: %w", t.Name, i, err)
		}
	}
	return nil
}

func (e *Engine) Apply(st Step) error {
	switch st.Op {
	case OpHill:
		e.Hill(st.Count, st.Height, st.X, st.Y)
	case OpPit:
		e.Pit(st.Count, st.Height, st.X, st.Y)
	case OpRange:
		e.Range(st.Count, st.Height, st.X, st.Y)
	case OpTrough:
		e.Trough(st.Count, st.Height, st.X, st.Y)
	case OpAdd:
		e.Add(st.Band, st.Value)
	case OpMultiply:
		e.Multiply(st.Band, st.Value)
	case OpStrait:
		e.Strait(st.Width, st.Axis)
	case OpSmooth:
		e.Smooth(st.Force)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOp, st.Op)
	}
	return nil
}

// resolveCount turns a possibly fractional count range into an integer: one
// draw picks the value (skipped when fixed), one more rounds the fraction up
// with probability equal to it.
func (e *Engine) resolveCount(s Span) int {
	v := rng.Uniform(e.r, s.Lo, s.Hi)
	return e.roundStochastic(v)
}

func (e *Engine) roundStochastic(v float64) int {
	whole := math.Trunc(v)
	n := int(whole)
	if e.r.Float64() < v-whole {
		n++
	}
	if n < 0 {
		n = 0
	}
	return n
}

// drawHeight samples an integer height from the half-open span, capped at the maximum.
func (e *Engine) drawHeight(s Span) int {
	h := rng.UniformInt(e.r, int(s.Lo), int(s.Hi))
	if h > grid.MaxHeight {
		h = grid.MaxHeight
	}
	if h < 0 {
		h = 0
	}
	return h
}

// drawPoint samples a map position from percentage spans.
func (e *Engine) drawPoint(xs, ys Span) (float64, float64) {
	w := float64(e.g.Size.Width)
	h := float64(e.g.Size.Height)
	x := rng.Uniform(e.r, xs.Lo*w/100, xs.Hi*w/100)
	y := rng.Uniform(e.r, ys.Lo*h/100, ys.Hi*h/100)
	return x, y
}

func clampHeight(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= grid.MaxHeight {
		return grid.MaxHeight
	}
	return uint8(v)
}

// path walks greedily from start toward end, preferring the neighbor nearest
// end. Each candidate's distance is halved with probability 1-keep, which
// gives the walk its wiggle. Visited cells are marked in used.
func (e *Engine) path(start, end int, used []bool, keep float64) []int {
	g := e.g
	target := g.Points[end]
	cur := start
	out := []int{cur}
	used[cur] = true
	for cur != end {
		best := math.Inf(1)
		next := -1
		for _, n := range g.Neighbors(cur) {
			if used[n] {
				continue
			}
			dx := target.X - g.Points[n].X
			dy := target.Y - g.Points[n].Y
			d := dx*dx + dy*dy
			if e.r.Float64() > keep {
				d /= 2
			}
			if d < best {
				best = d
				next = n
			}
		}
		if next < 0 {
			break
		}
		cur = next
		out = append(out, cur)
		used[cur] = true
	}
	return out
}
