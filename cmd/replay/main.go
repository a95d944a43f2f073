package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "mapsmith.dev/internal/persistence/log"
	"mapsmith.dev/internal/persistence/snapshot"
	"mapsmith.dev/internal/sim/mapgen"
)

func main() {
	var (
		snapPath = flag.String("snapshot", "", "path to .snap.zst")
		snapDir  = flag.String("dir", "", "verify every .snap.zst in this directory instead")
		diagDir  = flag.String("diagnostics", "", "diagnostics dir containing diagnostics-*.jsonl.zst (optional)")
	)
	flag.Parse()

	var paths []string
	switch {
	case *snapPath != "":
		paths = []string{*snapPath}
	case *snapDir != "":
		var err error
		paths, err = listFiles(*snapDir, "", ".snap.zst")
		if err != nil {
			fmt.Fprintln(os.Stderr, "list snapshots:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "missing -snapshot or -dir")
		os.Exit(2)
	}

	var logged map[string]int
	if *diagDir != "" {
		var err error
		logged, err = loggedDiagnostics(*diagDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "diagnostics:", err)
			os.Exit(1)
		}
	}

	failed := 0
	for _, path := range paths {
		if err := verify(path, logged); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "replay failed: %d of %d snapshots\n", failed, len(paths))
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d snapshots\n", len(paths))
}

func verify(path string, logged map[string]int) error {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	fmt.Printf("snapshot v%d template=%s seed=%d size=%dx%d density=%d cells=%d features=%d diagnostics=%d\n",
		snap.Header.Version, snap.Template, snap.Seed, snap.Width, snap.Height, snap.Density,
		len(snap.Heights), len(snap.Features), len(snap.Diagnostics))

	cfg, err := snap.Config()
	if err != nil {
		return err
	}
	m, err := mapgen.Generate(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("regenerate: %w", err)
	}
	if err := snap.Compare(m); err != nil {
		return err
	}
	if len(m.Diagnostics) != len(snap.Diagnostics) {
		return fmt.Errorf("diagnostic count mismatch: stored %d regenerated %d", len(snap.Diagnostics), len(m.Diagnostics))
	}
	if logged != nil {
		if n, ok := logged[m.Digest]; ok && n != len(m.Diagnostics) {
			return fmt.Errorf("diagnostics log holds %d entries for %s, want %d", n, m.Digest, len(m.Diagnostics))
		}
	}
	return nil
}

// loggedDiagnostics counts log entries per digest. A map saved twice logs
// its diagnostics twice; only the highest seq is meaningful.
func loggedDiagnostics(dir string) (map[string]int, error) {
	files, err := listFiles(dir, "diagnostics-", ".jsonl.zst")
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, path := range files {
		entries, err := persistlog.ReadDiagnostics(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for _, e := range entries {
			if e.Seq+1 > out[e.Digest] {
				out[e.Digest] = e.Seq + 1
			}
		}
	}
	return out, nil
}

func listFiles(dir, prefix, suffix string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
