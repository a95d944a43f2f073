package sampler

import (
	"testing"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/rng"
)

func TestPlan_500x500Density1(t *testing.T) {
	l := Plan(geom.Size{Width: 500, Height: 500}, 1)
	if l.Spacing != 5.0 {
		t.Fatalf("spacing=%v want 5", l.Spacing)
	}
	if l.CellsX != 100 || l.CellsY != 100 {
		t.Fatalf("cells=%dx%d want 100x100", l.CellsX, l.CellsY)
	}
}

func TestJitteredGrid_StaysInBoxAndNearSquare(t *testing.T) {
	size := geom.Size{Width: 100, Height: 60}
	spacing := 10.0
	pts := JitteredGrid(size, spacing, rng.New(7))
	if len(pts) != 10*6 {
		t.Fatalf("points=%d want 60", len(pts))
	}
	for i, p := range pts {
		if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 60 {
			t.Fatalf("point %d out of box: %+v", i, p)
		}
		cx := float64(i%10)*spacing + spacing/2
		cy := float64(i/10)*spacing + spacing/2
		if d := p.X - cx; d < -4.5 || d > 4.5 {
			t.Fatalf("point %d x jitter %v exceeds bound", i, d)
		}
		if d := p.Y - cy; d < -4.5 || d > 4.5 {
			t.Fatalf("point %d y jitter %v exceeds bound", i, d)
		}
	}
}

func TestJitteredGrid_DrawOrder(t *testing.T) {
	// Centered draws leave every point on its square center.
	src := &rng.Fixed{Values: []float64{0.5, 0.5}}
	pts := JitteredGrid(geom.Size{Width: 20, Height: 20}, 10, src)
	if src.Draws() != 8 {
		t.Fatalf("draws=%d want 8", src.Draws())
	}
	if pts[1] != (geom.Point{X: 15, Y: 5}) {
		t.Fatalf("second point should be the next column of the first row, got %+v", pts[1])
	}
}

func TestBoundary_OutsideBox(t *testing.T) {
	size := geom.Size{Width: 500, Height: 500}
	ring := Boundary(size, 5)
	if len(ring) == 0 {
		t.Fatalf("empty boundary")
	}
	for _, p := range ring {
		inside := p.X >= 0 && p.X <= 500 && p.Y >= 0 && p.Y <= 500
		if inside {
			t.Fatalf("boundary point inside map box: %+v", p)
		}
	}
}

func TestNonPositiveSpacingYieldsNoPoints(t *testing.T) {
	size := geom.Size{Width: 1, Height: 1}
	src := &rng.Fixed{Values: []float64{0.5}}
	if pts := JitteredGrid(size, 0, src); pts != nil {
		t.Fatalf("expected no points, got %d", len(pts))
	}
	if src.Draws() != 0 {
		t.Fatalf("draws=%d want 0", src.Draws())
	}
	if ring := Boundary(size, 0); ring != nil {
		t.Fatalf("expected no ring, got %d", len(ring))
	}
}

func TestPlan_MinSpacingThreshold(t *testing.T) {
	if s := Plan(geom.Size{Width: 100, Height: 100}, 1).Spacing; s < MinSpacing {
		t.Fatalf("100x100 density 1: spacing %v below minimum", s)
	}
	if s := Plan(geom.Size{Width: 1, Height: 1}, 10).Spacing; s >= MinSpacing {
		t.Fatalf("1x1 density 10: spacing %v should be below minimum", s)
	}
}
