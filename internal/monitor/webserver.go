// Package monitor provides the HTTP interface for observing and driving
// a running tomographic engine: health checks, engine statistics,
// navigation events, and debugging charts.
package monitor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/tomograph/internal/config"
	"github.com/banshee-data/tomograph/internal/httputil"
	"github.com/banshee-data/tomograph/internal/tomo"
	"github.com/banshee-data/tomograph/internal/tomodb"
	"github.com/banshee-data/tomograph/internal/version"
)

// WebServer handles the HTTP interface for a single engine instance.
// The engine itself is single-writer, so every mutating request is
// serialised through mu.
type WebServer struct {
	address string
	server  *http.Server

	mu     sync.Mutex
	grid   *tomo.Grid
	engine *tomo.Engine
	nav    *tomo.Navigator
	cfg    *config.EngineConfig
	db     *tomodb.DB
	runID  string
	cycle  int
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Grid    *tomo.Grid
	Engine  *tomo.Engine
	Nav     *tomo.Navigator
	Config  *config.EngineConfig
	DB      *tomodb.DB
	RunID   string
}

// NewWebServer creates a web server bound to the given engine state.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		address: cfg.Address,
		grid:    cfg.Grid,
		engine:  cfg.Engine,
		nav:     cfg.Nav,
		cfg:     cfg.Config,
		db:      cfg.DB,
		runID:   cfg.RunID,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Handler exposes the route mux for tests.
func (ws *WebServer) Handler() http.Handler { return ws.server.Handler }

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/engine/stats", ws.handleStats)
	mux.HandleFunc("/api/engine/event", ws.handleEvent)
	mux.HandleFunc("/api/engine/refresh", ws.handleRefresh)
	mux.HandleFunc("/api/engine/params", ws.handleParams)
	mux.HandleFunc("/debug/wave", ws.handleWaveChart)
	mux.HandleFunc("/debug/grid", ws.handleGridChart)

	return mux
}

// Start begins the HTTP server in a goroutine and shuts down when the
// context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"git_sha": version.GitSHA,
	})
}

// handleStats reports the engine snapshot: active counts, current index,
// invariant state and navigation status.
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	counts := ws.grid.ActiveCounts()
	invariantErr := ws.grid.CheckInvariants()
	idx := ws.nav.Index()

	resp := map[string]interface{}{
		"run_id":   ws.runID,
		"cycle":    ws.cycle,
		"capacity": ws.grid.Capacity(),
		"index":    map[string]int{"i": idx.I, "j": idx.J, "k": idx.K},
		"halted":   ws.nav.Halted(),
		"active_counts": map[string]int{
			"primary":      counts[tomo.Primary],
			"verification": counts[tomo.Verification],
			"transit":      counts[tomo.Transit],
			"derived":      counts[tomo.Derived],
		},
		"invariants_ok": invariantErr == nil,
	}
	if invariantErr != nil {
		resp["invariant_error"] = invariantErr.Error()
	}
	httputil.WriteJSONOK(w, resp)
}

// handleEvent applies one navigation event. An enter event also runs a
// protocol cycle and returns its packet and verdict.
//
// Query params:
//
//	e (required): up, down, left, right, back, start, enter, stop
func (ws *WebServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	event, ok := parseEvent(r.URL.Query().Get("e"))
	if !ok {
		httputil.BadRequest(w, "unknown event")
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	commit := ws.nav.Handle(event)
	idx := ws.nav.Index()

	resp := map[string]interface{}{
		"event":  event.String(),
		"index":  map[string]int{"i": idx.I, "j": idx.J, "k": idx.K},
		"halted": ws.nav.Halted(),
	}

	if commit {
		packet, verdict, err := ws.engine.RunCycle(ws.grid, idx)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("protocol cycle: %v", err))
			return
		}
		resp["packet"] = packet
		resp["verdict"] = verdict

		if ws.db != nil {
			if err := ws.db.RecordCycle(ws.runID, ws.cycle, idx, packet, verdict); err != nil {
				log.Printf("record cycle: %v", err)
			}
		}
	}

	httputil.WriteJSONOK(w, resp)
}

// handleRefresh runs one refresh cycle and returns its summary.
func (ws *WebServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	summary := ws.grid.Refresh(ws.cycle)
	ws.cycle++

	if err := ws.grid.CheckInvariants(); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("invariant check: %v", err))
		return
	}

	if ws.db != nil {
		if err := ws.db.RecordRefresh(ws.runID, summary); err != nil {
			log.Printf("record refresh: %v", err)
		}
	}

	httputil.WriteJSONOK(w, summary)
}

// handleParams returns the engine configuration as resolved values.
func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	cfg := ws.cfg
	if cfg == nil {
		cfg = config.EmptyEngineConfig()
	}
	coeffs := cfg.GetPolyCoeffs()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"grid_size":       cfg.GetGridSize(),
		"sparse_factor":   cfg.GetSparseFactor(),
		"harmonics":       cfg.GetHarmonics(),
		"trace_epsilon":   cfg.GetTraceEpsilon(),
		"poly_coeffs":     coeffs[:],
		"risk_threshold":  cfg.GetRiskThreshold(),
		"packet_capacity": cfg.GetPacketCapacity(),
		"seed":            cfg.GetSeed(),
	})
}

func parseEvent(s string) (tomo.Event, bool) {
	switch s {
	case "up":
		return tomo.EventUp, true
	case "down":
		return tomo.EventDown, true
	case "left":
		return tomo.EventLeft, true
	case "right":
		return tomo.EventRight, true
	case "back":
		return tomo.EventBack, true
	case "start":
		return tomo.EventStart, true
	case "enter":
		return tomo.EventEnter, true
	case "stop":
		return tomo.EventStop, true
	}
	return 0, false
}
