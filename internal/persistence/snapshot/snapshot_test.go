package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/mapgen"
)

func generate(t *testing.T) (*mapgen.Map, heightmap.Template) {
	t.Helper()
	tpl, err := heightmap.ParseTemplate(heightmap.Atoll)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	m, err := mapgen.Generate(context.Background(), mapgen.Config{
		Size:     geom.Size{Width: 200, Height: 150},
		Density:  1,
		Template: tpl.Name,
		Seed:     7,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return m, tpl
}

func TestSnapshot_RoundTripAndReplay(t *testing.T) {
	m, tpl := generate(t)
	path := filepath.Join(t.TempDir(), "maps", "atoll.snap.zst")
	if err := WriteSnapshot(path, FromMap(m, tpl)); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.Digest != m.Digest || h.Version != Version || h.Seed != 7 {
		t.Fatalf("unexpected header: %+v", h)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snap.Heights) != m.Grid.NumCells() || len(snap.Features) != len(m.Grid.Features) {
		t.Fatalf("snapshot sizes: heights=%d features=%d", len(snap.Heights), len(snap.Features))
	}
	if len(snap.Steps) != len(tpl.Steps) {
		t.Fatalf("steps: got %d want %d", len(snap.Steps), len(tpl.Steps))
	}

	cfg, err := snap.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	again, err := mapgen.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if err := snap.Compare(again); err != nil {
		t.Fatalf("compare: %v", err)
	}
}

func TestSnapshot_CompareDetectsDrift(t *testing.T) {
	m, tpl := generate(t)
	snap := FromMap(m, tpl)
	snap.Heights[3]++
	snap.Header.Digest = m.Digest
	if err := snap.Compare(m); err == nil {
		t.Fatalf("expected height mismatch")
	}
	snap.Header.Digest = "other"
	if err := snap.Compare(m); err == nil {
		t.Fatalf("expected digest mismatch")
	}
}
