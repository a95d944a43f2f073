package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mapsmith.dev/internal/sim/mapgen"
)

const schemaVersion = "1"

// SQLiteIndex is a queryable record of generated maps. The snapshot files
// remain the source of truth.
type SQLiteIndex struct {
	db   *sql.DB
	once sync.Once
	now  func() time.Time
}

type MapRow struct {
	ID           int64  `json:"id"`
	Seed         uint64 `json:"seed"`
	Template     string `json:"template"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Density      int    `json:"density"`
	Cells        int    `json:"cells"`
	Features     int    `json:"features"`
	Islands      int    `json:"islands"`
	Lakes        int    `json:"lakes"`
	Oceans       int    `json:"oceans"`
	Digest       string `json:"digest"`
	SnapshotPath string `json:"snapshot_path"`
	CreatedAt    string `json:"created_at"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS maps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			template TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			density INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			features INTEGER NOT NULL,
			islands INTEGER NOT NULL,
			lakes INTEGER NOT NULL,
			oceans INTEGER NOT NULL,
			digest TEXT NOT NULL,
			snapshot_path TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_digest ON maps(digest);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_template_seed ON maps(template, seed);`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			map_id INTEGER NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			stage TEXT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL,
			feature INTEGER NOT NULL,
			PRIMARY KEY (map_id, seq)
		);`,
		`INSERT OR IGNORE INTO meta(key, value) VALUES('schema_version', '` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}

// RecordMap stores one generated map and its diagnostics in a single
// transaction and returns the new row id.
func (s *SQLiteIndex) RecordMap(ctx context.Context, m *mapgen.Map, snapshotPath string) (int64, error) {
	g := m.Grid
	tally := m.Tally()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO maps(seed,template,width,height,density,cells,features,islands,lakes,oceans,digest,snapshot_path,created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		int64(m.Config.Seed),
		m.Template,
		g.Size.Width,
		g.Size.Height,
		g.Density,
		g.NumCells(),
		len(g.Features),
		tally.Islands,
		tally.Lakes,
		tally.Oceans,
		m.Digest,
		snapshotPath,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert map: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(m.Diagnostics) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO diagnostics(map_id,seq,stage,kind,detail,feature) VALUES(?,?,?,?,?,?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for i, d := range m.Diagnostics {
			if _, err := stmt.ExecContext(ctx, id, i, d.Stage, d.Kind, d.Detail, d.Feature); err != nil {
				return 0, fmt.Errorf("insert diagnostic %d: %w", i, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const mapColumns = `id,seed,template,width,height,density,cells,features,islands,lakes,oceans,digest,snapshot_path,created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMap(sc scanner) (MapRow, error) {
	var r MapRow
	var seed int64
	err := sc.Scan(&r.ID, &seed, &r.Template, &r.Width, &r.Height, &r.Density, &r.Cells,
		&r.Features, &r.Islands, &r.Lakes, &r.Oceans, &r.Digest, &r.SnapshotPath, &r.CreatedAt)
	r.Seed = uint64(seed)
	return r, err
}

// ListMaps returns up to limit rows, newest first. limit <= 0 means all.
func (s *SQLiteIndex) ListMaps(ctx context.Context, limit int) ([]MapRow, error) {
	q := `SELECT ` + mapColumns + ` FROM maps ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapRow
	for rows.Next() {
		r, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindByDigest returns the oldest map with the given digest.
func (s *SQLiteIndex) FindByDigest(ctx context.Context, digest string) (MapRow, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mapColumns+` FROM maps WHERE digest=? ORDER BY id LIMIT 1`, digest)
	r, err := scanMap(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MapRow{}, false, nil
	}
	if err != nil {
		return MapRow{}, false, err
	}
	return r, true, nil
}

// Diagnostics returns the stored diagnostics of one map in recording order.
func (s *SQLiteIndex) Diagnostics(ctx context.Context, mapID int64) ([]mapgen.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage,kind,detail,feature FROM diagnostics WHERE map_id=? ORDER BY seq`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mapgen.Diagnostic
	for rows.Next() {
		var d mapgen.Diagnostic
		if err := rows.Scan(&d.Stage, &d.Kind, &d.Detail, &d.Feature); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
