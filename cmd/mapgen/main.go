package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mapsmith.dev/internal/persistence/archive"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/mapgen"
	"mapsmith.dev/internal/sim/tuning"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		width      = flag.Int("width", 0, "map width (default: tuning)")
		height     = flag.Int("height", 0, "map height (default: tuning)")
		density    = flag.Int("density", 0, "cell density 1..10 (default: tuning)")
		template   = flag.String("template", "", "heightmap template (default: tuning)")
		seed       = flag.Uint64("seed", 0, "seed (default: tuning)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		outPath    = flag.String("out", "", "write coastlines/contours JSON here (optional)")
		polygons   = flag.Bool("polygons", false, "include cell polygons in -out")
		disableDB  = flag.Bool("disable_db", false, "skip the sqlite map index")
		noSave     = flag.Bool("no_snapshot", false, "do not persist the map")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[mapgen] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if *width > 0 {
		tune.Width = *width
	}
	if *height > 0 {
		tune.Height = *height
	}
	if *density > 0 {
		tune.Density = *density
	}
	if t := strings.TrimSpace(*template); t != "" {
		tune.Template = t
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	cat, err := tune.Catalog()
	if err != nil {
		logger.Fatalf("templates: %v", err)
	}
	tpl, err := cat.Lookup(tune.Template)
	if err != nil {
		logger.Fatalf("template: %v", err)
	}

	ctx := context.Background()
	m, err := mapgen.Generate(ctx, mapgen.Config{
		Size:        geom.Size{Width: tune.Width, Height: tune.Height},
		Density:     tune.Density,
		Template:    tpl.Name,
		Seed:        tune.Seed,
		TraceCap:    tune.TraceIterationCap,
		ContourStep: tune.ContourStep,
		Catalog:     cat,
	})
	if err != nil {
		logger.Fatalf("generate: %v", err)
	}
	tally := m.Tally()
	logger.Printf("template=%s seed=%d cells=%d islands=%d lakes=%d oceans=%d coastlines=%d contours=%d digest=%s",
		m.Template, m.Config.Seed, m.Grid.NumCells(), tally.Islands, tally.Lakes, tally.Oceans,
		len(m.Coastlines), len(m.Contours), m.Digest)
	for _, d := range m.Diagnostics {
		logger.Printf("diagnostic stage=%s kind=%s feature=%d %s", d.Stage, d.Kind, d.Feature, d.Detail)
	}

	if !*noSave {
		store, err := archive.Open(*dataDir, tune.SnapshotDir, !*disableDB)
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		saved, err := store.Save(ctx, m, tpl)
		if cerr := store.Close(); cerr != nil {
			logger.Printf("close store: %v", cerr)
		}
		if err != nil {
			logger.Fatalf("save: %v", err)
		}
		if saved.Reused {
			logger.Printf("already on file: %s (map %d)", saved.Path, saved.MapID)
		} else {
			logger.Printf("snapshot=%s map=%d", saved.Path, saved.MapID)
		}
	}

	if *outPath != "" {
		if err := writeOutputs(*outPath, m.Outputs(*polygons)); err != nil {
			logger.Fatalf("write outputs: %v", err)
		}
		logger.Printf("outputs=%s", *outPath)
	}
}

func writeOutputs(path string, out mapgen.Outputs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
