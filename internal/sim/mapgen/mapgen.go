// Package mapgen runs the full generation pipeline: sample, triangulate,
// shape heights, classify features and trace boundaries.
package mapgen

import (
	"context"
	"errors"
	"fmt"

	"mapsmith.dev/internal/sim/coastline"
	"mapsmith.dev/internal/sim/features"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/rng"
)

var ErrInvalidConfig = errors.New("mapgen: invalid config")

type Config struct {
	Size     geom.Size
	Density  int
	Template string
	Seed     uint64

	// TraceCap and ContourStep fall back to the coastline defaults when zero.
	TraceCap    int
	ContourStep int

	// Catalog resolves Template; nil means the stock templates only.
	Catalog *heightmap.Catalog
}

func (c Config) Validate() error {
	if err := grid.CheckSize(c.Size, c.Density); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.TraceCap < 0 || c.ContourStep < 0 {
		return fmt.Errorf("%w: negative trace settings", ErrInvalidConfig)
	}
	return nil
}

const (
	StageHeightmap = "heightmap"
	StageCoastline = "coastline"
	StageContour   = "contour"
)

// Diagnostic is a non-fatal event recorded during generation.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
	Feature int    `json:"feature"`
}

// Map is one generated map with everything the renderers need.
type Map struct {
	Config      Config
	Template    string
	Grid        *grid.Grid
	Coastlines  []coastline.Coastline
	Contours    []coastline.Contour
	Diagnostics []Diagnostic
	Digest      string
}

// Generate builds a map. Stages run strictly in order on one random stream,
// so the same config always yields the same map. ctx is checked between
// stages only.
func Generate(ctx context.Context, cfg Config) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = heightmap.NewCatalog()
	}
	tpl, err := cat.Lookup(cfg.Template)
	if err != nil {
		return nil, err
	}

	r := rng.New(cfg.Seed)
	g, err := grid.New(cfg.Size, cfg.Density, r)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	m := &Map{Config: cfg, Template: tpl.Name, Grid: g}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng := heightmap.New(g, r)
	eng.OnEvent = func(ev heightmap.Event) {
		m.Diagnostics = append(m.Diagnostics, Diagnostic{
			Stage:   StageHeightmap,
			Kind:    ev.Kind,
			Detail:  ev.Op + ": " + ev.Detail,
			Feature: grid.NoFeature,
		})
	}
	if err := eng.Run(tpl); err != nil {
		return nil, fmt.Errorf("heightmap: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features.Classify(g)

	tr := coastline.New(g)
	if cfg.TraceCap > 0 {
		tr.Cap = cfg.TraceCap
	}
	if cfg.ContourStep > 0 {
		tr.Step = cfg.ContourStep
	}
	var failed []coastline.Failure
	m.Coastlines, failed = tr.Coastlines()
	m.record(StageCoastline, failed)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Contours, failed = tr.Contours()
	m.record(StageContour, failed)

	m.Digest = Digest(m)
	return m, nil
}

func (m *Map) record(stage string, failed []coastline.Failure) {
	for _, f := range failed {
		m.Diagnostics = append(m.Diagnostics, Diagnostic{
			Stage:   stage,
			Kind:    failureKind(f.Err),
			Detail:  f.Err.Error(),
			Feature: f.Feature,
		})
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, coastline.ErrIterationCap):
		return "iteration_cap"
	case errors.Is(err, coastline.ErrWalkOpen):
		return "walk_open"
	case errors.Is(err, coastline.ErrWalkStuck):
		return "walk_stuck"
	case errors.Is(err, coastline.ErrNoStartVertex):
		return "no_start_vertex"
	}
	return "trace_failed"
}

// Tally counts the map's features by type.
func (m *Map) Tally() features.Tally { return features.Count(m.Grid.Features) }
