package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mapsmith.dev/internal/persistence/archive"
	"mapsmith.dev/internal/persistence/snapshot"
	"mapsmith.dev/internal/sim/tuning"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "templates":
			templatesCmd(os.Args[2:])
			return
		case "remote":
			remoteCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dir := fs.String("dir", "./data/snapshots", "snapshot directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".snap.zst") {
			continue
		}
		h, err := snapshot.ReadHeader(filepath.Join(*dir, e.Name()))
		if err != nil {
			fmt.Printf("%s\tunreadable: %v\n", e.Name(), err)
			continue
		}
		fmt.Printf("%s\ttemplate=%s seed=%d digest=%s\n", e.Name(), h.Template, h.Seed, h.Digest)
	}
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	path := fs.String("snapshot", "", "snapshot path")
	full := fs.Bool("full", false, "decode the whole snapshot, not only its header")
	_ = fs.Parse(args)

	if strings.TrimSpace(*path) == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}
	out := map[string]any{}
	h, err := snapshot.ReadHeader(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read header:", err)
		os.Exit(1)
	}
	out["header"] = h
	if meta, err := archive.ReadMeta(*path); err == nil {
		out["meta"] = meta
	}
	if *full {
		snap, err := snapshot.ReadSnapshot(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		steps := make([]string, 0, len(snap.Steps))
		for _, st := range snap.Steps {
			steps = append(steps, st.Op.String())
		}
		out["size"] = fmt.Sprintf("%dx%d", snap.Width, snap.Height)
		out["density"] = snap.Density
		out["cells"] = len(snap.Heights)
		out["features"] = len(snap.Features)
		out["steps"] = steps
		out["diagnostics"] = snap.Diagnostics
	}
	printJSON(out)
}

func templatesCmd(args []string) {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	_ = fs.Parse(args)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}
	cat, err := tune.Catalog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "templates:", err)
		os.Exit(1)
	}
	for _, name := range cat.Names() {
		tpl, _ := cat.Lookup(name)
		mark := ""
		if name == tune.Template {
			mark = " (default)"
		}
		fmt.Printf("%s\tsteps=%d%s\n", name, len(tpl.Steps), mark)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
