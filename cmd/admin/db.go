package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"mapsmith.dev/internal/persistence/archive"
	"mapsmith.dev/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	mapID := fs.Int64("map", 0, "map id (diagnostics)")
	digest := fs.String("digest", "", "map digest (find)")
	_ = fs.Parse(args)

	q := "maps"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = archive.IndexPath(*dataDir)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx := context.Background()
	switch q {
	case "maps":
		rows, err := idx.ListMaps(ctx, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, r := range rows {
			fmt.Printf("%d\t%s\tseed=%d\t%dx%d\tcells=%d\tislands=%d lakes=%d oceans=%d\t%s\n",
				r.ID, r.Template, r.Seed, r.Width, r.Height, r.Cells, r.Islands, r.Lakes, r.Oceans, r.Digest)
		}
	case "find":
		if strings.TrimSpace(*digest) == "" {
			fmt.Fprintln(os.Stderr, "missing -digest")
			os.Exit(2)
		}
		row, ok, err := idx.FindByDigest(ctx, *digest)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "not found")
			os.Exit(1)
		}
		printJSON(row)
	case "diagnostics":
		if *mapID <= 0 {
			fmt.Fprintln(os.Stderr, "missing -map")
			os.Exit(2)
		}
		diags, err := idx.Diagnostics(ctx, *mapID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, d := range diags {
			fmt.Printf("%s\t%s\tfeature=%d\t%s\n", d.Stage, d.Kind, d.Feature, d.Detail)
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(want maps, find or diagnostics)")
		os.Exit(2)
	}
}
