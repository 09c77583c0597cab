package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urbannav/backend/data"
	"urbannav/backend/driver"
	"urbannav/backend/network"
	"urbannav/backend/server"
	"urbannav/backend/sim"
	"urbannav/backend/trafficconfig"
)

func main() {
	graphPath := flag.String("graph", "", "path to a graph JSON file (falls back to the embedded demo graph)")
	configPath := flag.String("config", "", "path to a traffic config JSON file (falls back to built-in defaults)")
	seed := flag.Int64("seed", 0, "random seed (0 = derived from current time)")
	tickInterval := flag.Duration("tick_interval", time.Second, "interval between automatic ticks pushed over the websocket stream")
	reportPath := flag.String("report", "", "if set, write a CSV report to this file or directory on shutdown (timestamp appended)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	spawnCount := flag.Int("seed_vehicles", 20, "number of vehicles to spawn at startup")
	batchTicks := flag.Int("batch_ticks", 0, "if > 0, run this many ticks headlessly (no HTTP server) and exit")
	flag.Parse()

	net, err := loadGraph(*graphPath)
	if err != nil {
		log.Fatalf("main: load graph: %v", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("main: load config: %v; using defaults", err)
		cfg = trafficconfig.Default()
	}

	if *batchTicks > 0 {
		opt := driver.Options{Ticks: *batchTicks, SpawnCount: *spawnCount, ReportPath: *reportPath, Seed: *seed}
		if _, err := driver.Run(net, cfg, opt); err != nil {
			log.Fatalf("main: batch run: %v", err)
		}
		return
	}

	engineSeed := *seed
	if engineSeed == 0 {
		engineSeed = time.Now().UnixNano()
	}
	engine := sim.New(net, cfg, engineSeed)
	engine.SpawnRandom(*spawnCount, nil)
	engine.Run()

	srv := server.New(engine, server.Options{TickInterval: *tickInterval, ReportPath: *reportPath})
	srv.Serve()

	go awaitShutdown(engine, *reportPath)

	log.Printf("main: serving on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("main: serve: %v", err)
	}
}

// awaitShutdown blocks until an interrupt or termination signal arrives,
// stops the engine, and writes the final CSV and console reports.
func awaitShutdown(engine *sim.Simulator, reportPath string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("main: shutting down")
	engine.Stop()

	vehicles := engine.AllVehicles()
	stats := engine.Stats()
	report := engine.CongestionReport()

	if reportPath != "" {
		if _, err := sim.WriteCSVReport(reportPath, vehicles, stats); err != nil {
			log.Printf("main: write report: %v", err)
		}
	}
	sim.PrintConsoleReport(vehicles, stats, report)
	os.Exit(0)
}

func loadGraph(path string) (*network.RoadNetwork, error) {
	if path == "" {
		return data.DefaultGraph()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return network.Load(f)
}

func loadConfig(path string) (*trafficconfig.Config, error) {
	if path == "" {
		return trafficconfig.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return trafficconfig.Load(f)
}
