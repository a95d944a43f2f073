package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"mapsmith.dev/internal/persistence/indexdb"
	"mapsmith.dev/internal/sim/mapgen"
)

type serverStats struct {
	mu          sync.Mutex
	maps        uint64
	cells       uint64
	diagnostics map[string]uint64 // by kind
	templates   map[string]uint64
}

func (s *serverStats) observe(m *mapgen.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diagnostics == nil {
		s.diagnostics = map[string]uint64{}
		s.templates = map[string]uint64{}
	}
	s.maps++
	s.cells += uint64(m.Grid.NumCells())
	s.templates[m.Template]++
	for _, d := range m.Diagnostics {
		s.diagnostics[d.Kind]++
	}
}

func (s *serverStats) metricsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		s.mu.Lock()
		defer s.mu.Unlock()

		fmt.Fprintf(rw, "# HELP mapsmith_maps_generated_total Maps generated since start.\n")
		fmt.Fprintf(rw, "# TYPE mapsmith_maps_generated_total counter\n")
		fmt.Fprintf(rw, "mapsmith_maps_generated_total %d\n", s.maps)

		fmt.Fprintf(rw, "# HELP mapsmith_cells_generated_total Voronoi cells generated since start.\n")
		fmt.Fprintf(rw, "# TYPE mapsmith_cells_generated_total counter\n")
		fmt.Fprintf(rw, "mapsmith_cells_generated_total %d\n", s.cells)

		fmt.Fprintf(rw, "# HELP mapsmith_template_maps_total Maps generated per template.\n")
		fmt.Fprintf(rw, "# TYPE mapsmith_template_maps_total counter\n")
		for _, k := range sortedKeys(s.templates) {
			fmt.Fprintf(rw, "mapsmith_template_maps_total{template=%q} %d\n", k, s.templates[k])
		}

		fmt.Fprintf(rw, "# HELP mapsmith_diagnostics_total Non-fatal generation diagnostics per kind.\n")
		fmt.Fprintf(rw, "# TYPE mapsmith_diagnostics_total counter\n")
		for _, k := range sortedKeys(s.diagnostics) {
			fmt.Fprintf(rw, "mapsmith_diagnostics_total{kind=%q} %d\n", k, s.diagnostics[k])
		}
	}
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// adminAPI serves read-only index queries to loopback clients.
type adminAPI struct {
	index *indexdb.SQLiteIndex
}

func (a *adminAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/v1/maps", a.guard(a.handleMaps))
	mux.HandleFunc("/admin/v1/maps/diagnostics", a.guard(a.handleDiagnostics))
}

func (a *adminAPI) guard(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if a.index == nil {
			http.Error(rw, "index disabled", http.StatusServiceUnavailable)
			return
		}
		h(rw, r)
	}
}

func (a *adminAPI) handleMaps(rw http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(rw, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	rows, err := a.index.ListMaps(r.Context(), limit)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []indexdb.MapRow{}
	}
	writeJSON(rw, map[string]any{"maps": rows})
}

func (a *adminAPI) handleDiagnostics(rw http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(rw, "bad id", http.StatusBadRequest)
		return
	}
	diags, err := a.index.Diagnostics(r.Context(), id)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	if diags == nil {
		diags = []mapgen.Diagnostic{}
	}
	writeJSON(rw, map[string]any{"map_id": id, "diagnostics": diags})
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
