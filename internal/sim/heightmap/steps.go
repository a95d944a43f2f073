package heightmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mapsmith.dev/internal/sim/grid"
)

var (
	ErrUnknownTemplate = errors.New("heightmap: unknown template")
	ErrUnknownOp       = errors.New("heightmap: unknown operator")
	ErrBadSpan         = errors.New("heightmap: malformed range")
	ErrBadBand         = errors.New("heightmap: malformed band")
)

// Span is a numeric range [Lo, Hi). Lo == Hi is a fixed value.
type Span struct {
	Lo, Hi float64
}

func Fixed(v float64) Span { return Span{Lo: v, Hi: v} }

func (s Span) IsFixed() bool { return s.Lo == s.Hi }

func (s Span) String() string {
	if s.IsFixed() {
		return strconv.FormatFloat(s.Lo, 'g', -1, 64)
	}
	return strconv.FormatFloat(s.Lo, 'g', -1, 64) + "-" + strconv.FormatFloat(s.Hi, 'g', -1, 64)
}

// ParseSpan accepts "7", "0.5" or "5-10".
func ParseSpan(s string) (Span, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Span{}, fmt.Errorf("%w: empty", ErrBadSpan)
	}
	lo, hi, found := strings.Cut(s[1:], "-")
	lo = s[:1] + lo
	a, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Span{}, fmt.Errorf("%w: %q", ErrBadSpan, s)
	}
	if !found {
		return Fixed(a), nil
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil || b < a {
		return Span{}, fmt.Errorf("%w: %q", ErrBadSpan, s)
	}
	return Span{Lo: a, Hi: b}, nil
}

func mustSpan(s string) Span {
	sp, err := ParseSpan(s)
	if err != nil {
		panic(err)
	}
	return sp
}

// Band selects the cells an add/multiply step applies to, inclusive on both ends.
type Band struct {
	Lo, Hi int
}

var (
	BandAll   = Band{Lo: 0, Hi: grid.MaxHeight}
	BandLand  = Band{Lo: grid.OceanHeight, Hi: grid.MaxHeight}
	BandOcean = Band{Lo: 0, Hi: grid.OceanHeight - 1}
)

func (b Band) Contains(h int) bool { return h >= b.Lo && h <= b.Hi }

// landRelative reports whether transforms pivot on the sea level instead of zero.
func (b Band) landRelative() bool { return b.Lo == grid.OceanHeight }

func (b Band) String() string {
	switch b {
	case BandAll:
		return "all"
	case BandLand:
		return "land"
	case BandOcean:
		return "ocean"
	}
	return fmt.Sprintf("%d-%d", b.Lo, b.Hi)
}

// ParseBand accepts "all", "land", "ocean" or an inclusive "lo-hi".
func ParseBand(s string) (Band, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return BandAll, nil
	case "land":
		return BandLand, nil
	case "ocean", "water":
		return BandOcean, nil
	}
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Band{}, fmt.Errorf("%w: %q", ErrBadBand, s)
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(lo))
	b, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil || a > b || a < 0 || b > grid.MaxHeight {
		return Band{}, fmt.Errorf("%w: %q", ErrBadBand, s)
	}
	return Band{Lo: a, Hi: b}, nil
}

type Axis uint8

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("heightmap: unknown axis %q", s)
}

type Op uint8

const (
	OpHill Op = iota + 1
	OpPit
	OpRange
	OpTrough
	OpAdd
	OpMultiply
	OpStrait
	OpSmooth
)

var opNames = map[Op]string{
	OpHill:     "hill",
	OpPit:      "pit",
	OpRange:    "range",
	OpTrough:   "trough",
	OpAdd:      "add",
	OpMultiply: "multiply",
	OpStrait:   "strait",
	OpSmooth:   "smooth",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Step is one operator invocation in a template. Only the fields the operator
// reads are meaningful.
type Step struct {
	Op     Op
	Count  Span
	Height Span
	X, Y   Span
	Band   Band
	Value  float64
	Width  Span
	Axis   Axis
	Force  int
}

func Hill(count, height, x, y string) Step {
	return Step{Op: OpHill, Count: mustSpan(count), Height: mustSpan(height), X: mustSpan(x), Y: mustSpan(y)}
}

func Pit(count, height, x, y string) Step {
	return Step{Op: OpPit, Count: mustSpan(count), Height: mustSpan(height), X: mustSpan(x), Y: mustSpan(y)}
}

func Range(count, height, x, y string) Step {
	return Step{Op: OpRange, Count: mustSpan(count), Height: mustSpan(height), X: mustSpan(x), Y: mustSpan(y)}
}

func Trough(count, height, x, y string) Step {
	return Step{Op: OpTrough, Count: mustSpan(count), Height: mustSpan(height), X: mustSpan(x), Y: mustSpan(y)}
}

func Add(band Band, delta float64) Step { return Step{Op: OpAdd, Band: band, Value: delta} }

func Multiply(band Band, factor float64) Step { return Step{Op: OpMultiply, Band: band, Value: factor} }

func Strait(width string, axis Axis) Step {
	return Step{Op: OpStrait, Width: mustSpan(width), Axis: axis}
}

func Smooth(force int) Step { return Step{Op: OpSmooth, Force: force} }
