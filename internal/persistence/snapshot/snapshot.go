package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/mapgen"
)

const Version = 1

type Header struct {
	Version  int    `json:"version"`
	Digest   string `json:"digest"`
	Template string `json:"template"`
	Seed     uint64 `json:"seed"`
}

// MapSnapshotV1 stores a generated map together with everything needed to
// regenerate it.
type MapSnapshotV1 struct {
	Header Header `json:"header"`

	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Density     int    `json:"density"`
	Template    string `json:"template"`
	Seed        uint64 `json:"seed"`
	TraceCap    int    `json:"trace_cap,omitempty"`
	ContourStep int    `json:"contour_step,omitempty"`

	// Steps is the resolved template, so custom templates replay without their yaml.
	Steps []heightmap.Step `json:"steps"`

	Heights  []uint8     `json:"heights"`
	Feature  []int       `json:"feature"`
	Coast    []uint8     `json:"coast"`
	Features []FeatureV1 `json:"features"`

	Diagnostics []DiagnosticV1 `json:"diagnostics,omitempty"`
}

type FeatureV1 struct {
	ID        int    `json:"id"`
	Land      bool   `json:"land"`
	Border    bool   `json:"border"`
	Type      string `json:"type"`
	Group     string `json:"group"`
	Cells     int    `json:"cells"`
	FirstCell int    `json:"first_cell"`
}

type DiagnosticV1 struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
	Feature int    `json:"feature"`
}

// FromMap captures m. tpl must be the template m was generated with.
func FromMap(m *mapgen.Map, tpl heightmap.Template) MapSnapshotV1 {
	g := m.Grid
	snap := MapSnapshotV1{
		Header:      Header{Version: Version, Digest: m.Digest, Template: m.Template, Seed: m.Config.Seed},
		Width:       g.Size.Width,
		Height:      g.Size.Height,
		Density:     g.Density,
		Template:    m.Template,
		Seed:        m.Config.Seed,
		TraceCap:    m.Config.TraceCap,
		ContourStep: m.Config.ContourStep,
		Steps:       tpl.Steps,
		Heights:     append([]uint8(nil), g.Heights...),
		Feature:     append([]int(nil), g.Feature...),
		Coast:       make([]uint8, len(g.Coast)),
	}
	for i, c := range g.Coast {
		snap.Coast[i] = uint8(c)
	}
	for _, f := range g.Features {
		snap.Features = append(snap.Features, FeatureV1{
			ID:        f.ID,
			Land:      f.Land,
			Border:    f.Border,
			Type:      f.Type.String(),
			Group:     f.Group,
			Cells:     f.Cells,
			FirstCell: f.FirstCell,
		})
	}
	for _, d := range m.Diagnostics {
		snap.Diagnostics = append(snap.Diagnostics, DiagnosticV1(d))
	}
	return snap
}

// Config rebuilds the generation config, with a catalog holding the stored template.
func (s MapSnapshotV1) Config() (mapgen.Config, error) {
	cat := heightmap.NewCatalog()
	if err := cat.Register(heightmap.Template{Name: s.Template, Steps: s.Steps}); err != nil {
		return mapgen.Config{}, fmt.Errorf("snapshot template: %w", err)
	}
	return mapgen.Config{
		Size:        geom.Size{Width: s.Width, Height: s.Height},
		Density:     s.Density,
		Template:    s.Template,
		Seed:        s.Seed,
		TraceCap:    s.TraceCap,
		ContourStep: s.ContourStep,
		Catalog:     cat,
	}, nil
}

func WriteSnapshot(path string, snap MapSnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (MapSnapshotV1, error) {
	var snap MapSnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is repeated inside the gob body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// Compare reports the first per-cell difference between the snapshot and m.
func (s MapSnapshotV1) Compare(m *mapgen.Map) error {
	g := m.Grid
	if m.Digest != s.Header.Digest {
		return fmt.Errorf("digest mismatch: stored %s regenerated %s", s.Header.Digest, m.Digest)
	}
	if len(g.Heights) != len(s.Heights) {
		return fmt.Errorf("cell count mismatch: stored %d regenerated %d", len(s.Heights), len(g.Heights))
	}
	for i := range s.Heights {
		if g.Heights[i] != s.Heights[i] {
			return fmt.Errorf("height mismatch at cell %d", i)
		}
		if g.Feature[i] != s.Feature[i] {
			return fmt.Errorf("feature mismatch at cell %d", i)
		}
		if uint8(g.Coast[i]) != s.Coast[i] {
			return fmt.Errorf("coast mismatch at cell %d", i)
		}
	}
	return nil
}
