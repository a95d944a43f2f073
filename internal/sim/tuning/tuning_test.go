package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"mapsmith.dev/internal/sim/heightmap"
)

func TestLoad_RepoConfig(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.Density != 1 || tune.Template != heightmap.Continents {
		t.Fatalf("unexpected tuning: %+v", tune)
	}
	cat, err := tune.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	tpl, err := cat.Lookup("twin_peaks")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(tpl.Steps) != 7 {
		t.Fatalf("steps: got %d want 7", len(tpl.Steps))
	}
	if tpl.Steps[4].Band != heightmap.BandLand || tpl.Steps[4].Value != 0.8 {
		t.Fatalf("multiply step: %+v", tpl.Steps[4])
	}
	if tpl.Steps[6].Axis != heightmap.Horizontal {
		t.Fatalf("strait axis: %v", tpl.Steps[6].Axis)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("density: 3\ntemplate: atoll\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if tune.Density != 3 || tune.Template != heightmap.Atoll || tune.Width != def.Width {
		t.Fatalf("unexpected tuning: %+v", tune)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Tuning){
		"density":  func(t *Tuning) { t.Density = 0 },
		"size":     func(t *Tuning) { t.Width = -1 },
		"too small": func(t *Tuning) { t.Width, t.Height, t.Density = 40, 40, 1 },
		"template": func(t *Tuning) { t.Template = "moon" },
		"bad op": func(t *Tuning) {
			t.Templates = map[string][]StepSpec{"x": {{Op: "erode"}}}
		},
		"bad span": func(t *Tuning) {
			t.Templates = map[string][]StepSpec{"x": {{Op: "hill", Count: "a", Height: "1", X: "1", Y: "1"}}}
		},
		"smooth force": func(t *Tuning) {
			t.Templates = map[string][]StepSpec{"x": {{Op: "smooth"}}}
		},
	}
	for name, mutate := range cases {
		tune := Defaults()
		mutate(&tune)
		if err := tune.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
