// Command tomograph runs the sparse-channel tomographic protocol engine:
// it builds the grid, walks the navigation event script, runs protocol
// and refresh cycles, persists the results, and optionally serves the
// HTTP monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/banshee-data/tomograph/internal/config"
	"github.com/banshee-data/tomograph/internal/monitor"
	"github.com/banshee-data/tomograph/internal/monitoring"
	"github.com/banshee-data/tomograph/internal/tomo"
	"github.com/banshee-data/tomograph/internal/tomodb"
	"github.com/banshee-data/tomograph/internal/version"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to engine config JSON (optional)")
		dbPath      = flag.String("db", "tomograph.db", "path to the cycle store; empty disables persistence")
		listenAddr  = flag.String("listen", "", "HTTP monitor listen address (e.g. :8080); empty disables the monitor")
		cycles      = flag.Int("cycles", 3, "number of refresh cycles to run")
		events      = flag.String("events", "start,right,up,enter,left,down,back,stop", "comma-separated navigation event script")
		plotDir     = flag.String("plot-dir", "", "directory for per-channel PNG plots; empty disables plotting")
		diagnostics = flag.Bool("diagnostics", false, "enable per-cell diagnostic logging")
	)
	flag.Parse()

	monitoring.Diagnostics = *diagnostics

	cfg := config.EmptyEngineConfig()
	if *configPath != "" {
		loaded, err := config.LoadEngineConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	grid := tomo.NewGrid(tomo.GridParams{
		Size:         cfg.GetGridSize(),
		SparseFactor: cfg.GetSparseFactor(),
		Harmonics:    cfg.GetHarmonics(),
		Tracer:       tomo.Tracer{Coeffs: cfg.GetPolyCoeffs(), Epsilon: cfg.GetTraceEpsilon()},
		Seed:         cfg.GetSeed(),
	})
	if err := grid.CheckInvariants(); err != nil {
		log.Fatalf("grid invariants after init: %v", err)
	}

	engine := &tomo.Engine{
		RiskThreshold:  cfg.GetRiskThreshold(),
		PacketCapacity: cfg.GetPacketCapacity(),
	}
	nav := tomo.NewNavigator(cfg.GetGridSize())

	var db *tomodb.DB
	if *dbPath != "" {
		var err error
		db, err = tomodb.Open(*dbPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
	}

	runID := uuid.NewString()
	log.Printf("tomograph %s (%s) run %s starting", version.Version, version.GitSHA, runID)

	var plotter *monitor.WavePlotter
	if *plotDir != "" {
		plotter = monitor.NewWavePlotter(0, 7)
		if err := plotter.Start(*plotDir); err != nil {
			log.Fatalf("start plotter: %v", err)
		}
	}

	// Walk the navigation script; each enter commits a protocol cycle.
	cycleN := 0
	for _, name := range strings.Split(*events, ",") {
		event, err := parseEvent(strings.TrimSpace(name))
		if err != nil {
			log.Fatalf("event script: %v", err)
		}
		if !nav.Handle(event) {
			continue
		}

		packet, verdict, err := engine.RunCycle(grid, nav.Index())
		if err != nil {
			log.Fatalf("protocol cycle: %v", err)
		}
		if db != nil {
			if err := db.RecordCycle(runID, cycleN, nav.Index(), packet, verdict); err != nil {
				log.Fatalf("record cycle: %v", err)
			}
		}
		cycleN++
	}

	// Run the refresh cycles and re-verify the invariants after each.
	for cycle := 0; cycle < *cycles; cycle++ {
		summary := grid.Refresh(cycle)
		if err := grid.CheckInvariants(); err != nil {
			log.Fatalf("grid invariants after refresh %d: %v", cycle, err)
		}
		if db != nil {
			if err := db.RecordRefresh(runID, summary); err != nil {
				log.Fatalf("record refresh: %v", err)
			}
		}
		if plotter != nil {
			plotter.Sample(grid)
		}
	}

	if plotter != nil {
		plotter.Stop()
		n, err := plotter.GeneratePlots()
		if err != nil {
			log.Fatalf("generate plots: %v", err)
		}
		log.Printf("wrote %d channel plots to %s", n, *plotDir)
	}

	if *listenAddr == "" {
		log.Printf("run %s complete: %d protocol cycles, %d refreshes", runID, cycleN, *cycles)
		return
	}

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listenAddr,
		Grid:    grid,
		Engine:  engine,
		Nav:     nav,
		Config:  cfg,
		DB:      db,
		RunID:   runID,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := ws.Start(ctx); err != nil {
		log.Fatalf("monitor server: %v", err)
	}
}

func parseEvent(name string) (tomo.Event, error) {
	switch name {
	case "up":
		return tomo.EventUp, nil
	case "down":
		return tomo.EventDown, nil
	case "left":
		return tomo.EventLeft, nil
	case "right":
		return tomo.EventRight, nil
	case "back":
		return tomo.EventBack, nil
	case "start":
		return tomo.EventStart, nil
	case "enter":
		return tomo.EventEnter, nil
	case "stop":
		return tomo.EventStop, nil
	}
	return 0, fmt.Errorf("unknown event %q", name)
}
