// Package driver runs the simulator headlessly — no HTTP server, no
// websocket stream — for scripted or batch evaluation runs.
package driver

import (
	"fmt"
	"time"

	"urbannav/backend/network"
	"urbannav/backend/sim"
	"urbannav/backend/trafficconfig"
	"urbannav/backend/vehicle"
)

// Options configures a headless run.
type Options struct {
	Ticks        int           // number of ticks to execute
	TickInterval time.Duration // real-time pause between ticks; 0 runs back-to-back
	SpawnCount   int           // vehicles to seed at startup
	ReportPath   string        // optional CSV report destination
	Seed         int64
}

// Summary is the result of a headless run.
type Summary struct {
	Ticks   int
	Stats   vehicle.Statistics
	Report  sim.CongestionReport
	CSVPath string
}

// Run drives the simulator for Options.Ticks ticks and returns aggregate
// statistics, optionally writing a CSV report alongside the console one.
func Run(net *network.RoadNetwork, cfg *trafficconfig.Config, opt Options) (Summary, error) {
	if opt.Ticks <= 0 {
		return Summary{}, fmt.Errorf("driver: Ticks must be positive")
	}

	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := sim.New(net, cfg, seed)
	engine.SpawnRandom(opt.SpawnCount, nil)
	engine.Run()

	for i := 0; i < opt.Ticks; i++ {
		engine.Tick()
		if opt.TickInterval > 0 {
			time.Sleep(opt.TickInterval)
		}
	}
	engine.Stop()

	vehicles := engine.AllVehicles()
	stats := engine.Stats()
	report := engine.CongestionReport()

	var csvPath string
	if opt.ReportPath != "" {
		path, err := sim.WriteCSVReport(opt.ReportPath, vehicles, stats)
		if err != nil {
			return Summary{}, fmt.Errorf("driver: write report: %w", err)
		}
		csvPath = path
	}
	sim.PrintConsoleReport(vehicles, stats, report)

	return Summary{Ticks: opt.Ticks, Stats: stats, Report: report, CSVPath: csvPath}, nil
}
