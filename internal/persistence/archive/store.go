// Package archive files generated maps: the snapshot goes to disk and the
// map is recorded in the index and the diagnostics log.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mapsmith.dev/internal/persistence/indexdb"
	persistlog "mapsmith.dev/internal/persistence/log"
	"mapsmith.dev/internal/persistence/snapshot"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/mapgen"
)

type MapMeta struct {
	Digest      string `json:"digest"`
	Template    string `json:"template"`
	Seed        uint64 `json:"seed"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Density     int    `json:"density"`
	Cells       int    `json:"cells"`
	Diagnostics int    `json:"diagnostics"`
	Snapshot    string `json:"snapshot"`
	CreatedAt   string `json:"created_at"`
}

// Store persists maps. Index and Diagnostics are optional.
type Store struct {
	SnapshotDir string
	Index       *indexdb.SQLiteIndex
	Diagnostics *persistlog.DiagnosticsLogger

	now func() time.Time
}

func NewStore(snapshotDir string, idx *indexdb.SQLiteIndex, diag *persistlog.DiagnosticsLogger) *Store {
	return &Store{SnapshotDir: snapshotDir, Index: idx, Diagnostics: diag, now: time.Now}
}

// Open builds a store rooted at dataDir. The index lives at
// <data>/index/maps.db and is skipped when indexed is false. An empty
// snapshotDir means <data>/snapshots.
func Open(dataDir, snapshotDir string, indexed bool) (*Store, error) {
	if snapshotDir == "" {
		snapshotDir = filepath.Join(dataDir, "snapshots")
	}
	var idx *indexdb.SQLiteIndex
	if indexed {
		var err error
		idx, err = indexdb.OpenSQLite(IndexPath(dataDir))
		if err != nil {
			return nil, err
		}
	}
	return NewStore(snapshotDir, idx, persistlog.NewDiagnosticsLogger(dataDir)), nil
}

func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, "index", "maps.db")
}

func (s *Store) Close() error {
	var first error
	if s.Diagnostics != nil {
		first = s.Diagnostics.Close()
	}
	if s.Index != nil {
		if err := s.Index.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type Saved struct {
	Path  string
	MapID int64
	// Reused is set when an identical map was already on file.
	Reused bool
}

// SnapshotName is the file name a map is stored under.
func SnapshotName(m *mapgen.Map) string {
	return fmt.Sprintf("%s-%d-%s.snap.zst", m.Template, m.Config.Seed, m.Digest[:12])
}

// Save writes m unless the index already holds a map with the same digest
// whose snapshot still exists.
func (s *Store) Save(ctx context.Context, m *mapgen.Map, tpl heightmap.Template) (Saved, error) {
	if s.Index != nil {
		row, ok, err := s.Index.FindByDigest(ctx, m.Digest)
		if err != nil {
			return Saved{}, fmt.Errorf("index lookup: %w", err)
		}
		if ok {
			if _, err := os.Stat(row.SnapshotPath); err == nil {
				return Saved{Path: row.SnapshotPath, MapID: row.ID, Reused: true}, nil
			}
		}
	}

	path := filepath.Join(s.SnapshotDir, SnapshotName(m))
	if err := snapshot.WriteSnapshot(path, snapshot.FromMap(m, tpl)); err != nil {
		return Saved{}, fmt.Errorf("write snapshot: %w", err)
	}
	meta := MapMeta{
		Digest:      m.Digest,
		Template:    m.Template,
		Seed:        m.Config.Seed,
		Width:       m.Grid.Size.Width,
		Height:      m.Grid.Size.Height,
		Density:     m.Grid.Density,
		Cells:       m.Grid.NumCells(),
		Diagnostics: len(m.Diagnostics),
		Snapshot:    filepath.Base(path),
		CreatedAt:   s.now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Saved{}, fmt.Errorf("encode meta: %w", err)
	}
	if err := os.WriteFile(metaPath(path), b, 0o644); err != nil {
		return Saved{}, fmt.Errorf("write meta: %w", err)
	}

	saved := Saved{Path: path}
	if s.Index != nil {
		id, err := s.Index.RecordMap(ctx, m, path)
		if err != nil {
			return saved, fmt.Errorf("index map: %w", err)
		}
		saved.MapID = id
	}
	if s.Diagnostics != nil {
		if err := s.Diagnostics.WriteMap(m); err != nil {
			return saved, fmt.Errorf("diagnostics log: %w", err)
		}
	}
	return saved, nil
}

// ReadMeta loads the sidecar written next to a snapshot.
func ReadMeta(snapshotPath string) (MapMeta, error) {
	var meta MapMeta
	b, err := os.ReadFile(metaPath(snapshotPath))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(b, &meta)
	return meta, err
}

func metaPath(snapshotPath string) string {
	return snapshotPath + ".meta.json"
}
