package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// remoteCmd queries the admin endpoints of a running server.
func remoteCmd(args []string) {
	fs := flag.NewFlagSet("remote", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	limit := fs.Int("limit", 20, "result limit")
	mapID := fs.Int64("map", 0, "map id; lists its diagnostics instead of maps")
	_ = fs.Parse(args)

	base := strings.TrimRight(strings.TrimSpace(*baseURL), "/")
	var u string
	if *mapID > 0 {
		u = base + "/admin/v1/maps/diagnostics?id=" + url.QueryEscape(fmt.Sprint(*mapID))
	} else {
		u = base + "/admin/v1/maps?limit=" + url.QueryEscape(fmt.Sprint(*limit))
	}
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
