package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mapsmith.dev/internal/persistence/archive"
	"mapsmith.dev/internal/sim/mapgen"
	"mapsmith.dev/internal/sim/tuning"
	"mapsmith.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite map index")
		noSave     = flag.Bool("no_snapshot", false, "do not persist generated maps")
		queueSize  = flag.Int("queue", 4, "pending GENERATE requests per connection")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	cat, err := tune.Catalog()
	if err != nil {
		logger.Fatalf("templates: %v", err)
	}
	logger.Printf("templates: %s", strings.Join(cat.Names(), ","))

	var store *archive.Store
	if !*noSave {
		store, err = archive.Open(*dataDir, tune.SnapshotDir, !*disableDB)
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		defer store.Close()
	}

	stats := &serverStats{}
	onMap := func(m *mapgen.Map) {
		stats.observe(m)
		if store == nil {
			return
		}
		tpl, err := cat.Lookup(m.Template)
		if err != nil {
			logger.Printf("persist %s: %v", m.Digest, err)
			return
		}
		saved, err := store.Save(context.Background(), m, tpl)
		if err != nil {
			logger.Printf("persist %s: %v", m.Digest, err)
			return
		}
		if !saved.Reused {
			logger.Printf("stored template=%s seed=%d snapshot=%s", m.Template, m.Config.Seed, filepath.Base(saved.Path))
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", stats.metricsHandler())

	if envBool("MAPSMITH_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		adm := &adminAPI{}
		if store != nil {
			adm.index = store.Index
		}
		adm.register(mux)
	} else {
		logger.Printf("admin endpoints disabled (MAPSMITH_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("MAPSMITH_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	wsSrv := ws.NewServer(ws.Config{
		Catalog:     cat,
		TraceCap:    tune.TraceIterationCap,
		ContourStep: tune.ContourStep,
		QueueSize:   *queueSize,
		OnMap:       onMap,
	}, logger)
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
