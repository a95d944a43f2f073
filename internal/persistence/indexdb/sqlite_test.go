package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/grid"
	"mapsmith.dev/internal/sim/gridtest"
	"mapsmith.dev/internal/sim/mapgen"
)

func fakeMap(t *testing.T, seed uint64, digest string) *mapgen.Map {
	t.Helper()
	g := gridtest.Lattice(3, 1, []uint8{40, 0, 40}, nil)
	g.Features = []grid.Feature{
		{ID: 0, Land: true, Type: grid.FeatureIsland, Cells: 1},
		{ID: 1, Type: grid.FeatureLake, Cells: 1, FirstCell: 1},
		{ID: 2, Land: true, Type: grid.FeatureIsland, Cells: 1, FirstCell: 2},
	}
	return &mapgen.Map{
		Config:   mapgen.Config{Size: geom.Size{Width: 30, Height: 10}, Density: 1, Seed: seed},
		Template: "volcano",
		Grid:     g,
		Digest:   digest,
		Diagnostics: []mapgen.Diagnostic{
			{Stage: mapgen.StageHeightmap, Kind: "strait_skipped", Detail: "strait: width 0.300", Feature: grid.NoFeature},
			{Stage: mapgen.StageContour, Kind: "walk_stuck", Detail: "contour 40", Feature: grid.NoFeature},
		},
	}
}

func TestSQLiteIndex_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	// Seeds above MaxInt64 must survive the signed column.
	big := uint64(1<<63 + 5)
	id1, err := idx.RecordMap(ctx, fakeMap(t, big, "d1"), "/snaps/a.snap.zst")
	if err != nil {
		t.Fatalf("RecordMap: %v", err)
	}
	id2, err := idx.RecordMap(ctx, fakeMap(t, 2, "d2"), "/snaps/b.snap.zst")
	if err != nil {
		t.Fatalf("RecordMap: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids not increasing: %d %d", id1, id2)
	}

	rows, err := idx.ListMaps(ctx, 0)
	if err != nil {
		t.Fatalf("ListMaps: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != id2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if limited, _ := idx.ListMaps(ctx, 1); len(limited) != 1 {
		t.Fatalf("limit ignored: %d rows", len(limited))
	}

	r, ok, err := idx.FindByDigest(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("FindByDigest: ok=%v err=%v", ok, err)
	}
	if r.Seed != big || r.Cells != 3 || r.Features != 3 || r.Islands != 2 || r.Lakes != 1 || r.Oceans != 0 {
		t.Fatalf("row mismatch: %+v", r)
	}
	if r.SnapshotPath != "/snaps/a.snap.zst" || r.Template != "volcano" || r.Width != 30 {
		t.Fatalf("row mismatch: %+v", r)
	}
	if _, ok, err := idx.FindByDigest(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing digest: ok=%v err=%v", ok, err)
	}

	diags, err := idx.Diagnostics(ctx, id1)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diags) != 2 || diags[1].Kind != "walk_stuck" || diags[0].Feature != grid.NoFeature {
		t.Fatalf("diagnostics mismatch: %+v", diags)
	}
}

func TestSQLiteIndex_SchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if v != schemaVersion {
		t.Fatalf("schema_version: got %q", v)
	}
}
