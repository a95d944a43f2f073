package tuning

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"mapsmith.dev/internal/sim/coastline"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/heightmap"
)

type Tuning struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Density  int    `yaml:"density"`
	Template string `yaml:"template"`
	Seed     uint64 `yaml:"seed"`

	TraceIterationCap int `yaml:"trace_iteration_cap"`
	ContourStep       int `yaml:"contour_step"`

	SnapshotDir string `yaml:"snapshot_dir"`

	Templates map[string][]StepSpec `yaml:"templates"`
}

// StepSpec is one template step as written in yaml. Ranges are strings such
// as "5-10" or "1.5".
type StepSpec struct {
	Op     string  `yaml:"op"`
	Count  string  `yaml:"count"`
	Height string  `yaml:"height"`
	X      string  `yaml:"x"`
	Y      string  `yaml:"y"`
	Band   string  `yaml:"band"`
	Value  float64 `yaml:"value"`
	Width  string  `yaml:"width"`
	Axis   string  `yaml:"axis"`
	Force  int     `yaml:"force"`
}

func Defaults() Tuning {
	return Tuning{
		Width:             960,
		Height:            540,
		Density:           1,
		Template:          heightmap.Continents,
		Seed:              1,
		TraceIterationCap: coastline.DefaultIterationCap,
		ContourStep:       coastline.DefaultContourStep,
		SnapshotDir:       "data/snapshots",
	}
}

// Load reads path over the defaults, so omitted keys keep their default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", t.Width, t.Height)
	}
	if t.Density < grid.MinDensity || t.Density > grid.MaxDensity {
		return fmt.Errorf("density must be in %d..%d, got %d", grid.MinDensity, grid.MaxDensity, t.Density)
	}
	if err := grid.CheckSize(geom.Size{Width: t.Width, Height: t.Height}, t.Density); err != nil {
		return err
	}
	if t.TraceIterationCap < 0 || t.ContourStep < 0 {
		return fmt.Errorf("trace_iteration_cap and contour_step must not be negative")
	}
	cat, err := t.Catalog()
	if err != nil {
		return err
	}
	if _, err := cat.Lookup(t.Template); err != nil {
		return err
	}
	return nil
}

// Catalog returns the stock templates plus every custom template, compiled.
func (t Tuning) Catalog() (*heightmap.Catalog, error) {
	cat := heightmap.NewCatalog()
	names := make([]string, 0, len(t.Templates))
	for name := range t.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tpl, err := compile(name, t.Templates[name])
		if err != nil {
			return nil, err
		}
		if err := cat.Register(tpl); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func compile(name string, specs []StepSpec) (heightmap.Template, error) {
	tpl := heightmap.Template{Name: name}
	for i, s := range specs {
		st, err := s.step()
		if err != nil {
			return tpl, fmt.Errorf("template %s step %d: %w", name, i, err)
		}
		tpl.Steps = append(tpl.Steps, st)
	}
	return tpl, nil
}

func (s StepSpec) step() (heightmap.Step, error) {
	op, err := heightmap.ParseOp(s.Op)
	if err != nil {
		return heightmap.Step{}, err
	}
	st := heightmap.Step{Op: op, Value: s.Value, Force: s.Force}
	switch op {
	case heightmap.OpHill, heightmap.OpPit, heightmap.OpRange, heightmap.OpTrough:
		for _, f := range []struct {
			dst *heightmap.Span
			src string
			key string
		}{
			{&st.Count, s.Count, "count"},
			{&st.Height, s.Height, "height"},
			{&st.X, s.X, "x"},
			{&st.Y, s.Y, "y"},
		} {
			sp, err := heightmap.ParseSpan(f.src)
			if err != nil {
				return st, fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = sp
		}
	case heightmap.OpAdd, heightmap.OpMultiply:
		if st.Band, err = heightmap.ParseBand(s.Band); err != nil {
			return st, err
		}
	case heightmap.OpStrait:
		if st.Width, err = heightmap.ParseSpan(s.Width); err != nil {
			return st, fmt.Errorf("width: %w", err)
		}
		if st.Axis, err = heightmap.ParseAxis(s.Axis); err != nil {
			return st, err
		}
	case heightmap.OpSmooth:
		if st.Force < 1 {
			return st, fmt.Errorf("smooth force must be at least 1")
		}
	}
	return st, nil
}
