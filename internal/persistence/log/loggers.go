package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"mapsmith.dev/internal/sim/mapgen"
)

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst under baseDir.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// DiagnosticEntry is one logged generation diagnostic with its map context.
type DiagnosticEntry struct {
	Time     string `json:"time"`
	Digest   string `json:"digest"`
	Template string `json:"template"`
	Seed     uint64 `json:"seed"`
	Seq      int    `json:"seq"`
	mapgen.Diagnostic
}

// DiagnosticsLogger writes one JSONL entry per generation diagnostic (compressed).
type DiagnosticsLogger struct{ w *JSONLZstdWriter }

func NewDiagnosticsLogger(dataDir string) *DiagnosticsLogger {
	return &DiagnosticsLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "diagnostics"), "diagnostics")}
}

// WriteMap logs every diagnostic of m. Maps without diagnostics write nothing.
func (l *DiagnosticsLogger) WriteMap(m *mapgen.Map) error {
	ts := l.w.now().UTC().Format(time.RFC3339)
	for i, d := range m.Diagnostics {
		e := DiagnosticEntry{
			Time:       ts,
			Digest:     m.Digest,
			Template:   m.Template,
			Seed:       m.Config.Seed,
			Seq:        i,
			Diagnostic: d,
		}
		if err := l.w.Write(e); err != nil {
			return err
		}
	}
	return nil
}

func (l *DiagnosticsLogger) Close() error { return l.w.Close() }

// ReadDiagnostics decodes every entry of one hourly diagnostics file.
func ReadDiagnostics(path string) ([]DiagnosticEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []DiagnosticEntry
	jd := json.NewDecoder(dec)
	for {
		var e DiagnosticEntry
		if err := jd.Decode(&e); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, fmt.Errorf("decode entry %d: %w", len(out), err)
		}
		out = append(out, e)
	}
}
