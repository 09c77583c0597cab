package sim

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"urbannav/backend/vehicle"
)

// WriteCSVReport writes a per-vehicle CSV report plus a summary row to
// the given path or directory. If reportPath is a directory, a
// timestamped file is created inside it; if it names a file, a
// timestamp is suffixed before the extension.
func WriteCSVReport(reportPath string, vehicles []*vehicle.Vehicle, stats vehicle.Statistics) (string, error) {
	if reportPath == "" {
		return "", nil
	}
	ts := time.Now().Format("20060102-150405")
	outPath := reportPath
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, fmt.Sprintf("report-%s.csv", ts))
	} else if outPath != "" {
		ext := filepath.Ext(outPath)
		base := outPath[:len(outPath)-len(ext)]
		outPath = fmt.Sprintf("%s-%s%s", base, ts, ext)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	round2 := func(x float64) float64 { return math.Round(x*100) / 100 }

	fmt.Fprintln(f, "section,vehicle_id,mode,status,start,goal,reroutes,wait_time,travel_ticks,timestamp")
	for _, v := range vehicles {
		fmt.Fprintf(f, "vehicle,%s,%s,%s,%s,%s,%d,%.2f,%d,%s\n",
			v.ID, v.Mode, v.Status, v.StartNode, v.GoalNode, v.RerouteCount, round2(v.WaitTime), v.TravelTicks(), ts)
	}
	fmt.Fprintf(f, "summary,,,,,,%d,%.2f,,%s\n", stats.TotalReroutes, round2(stats.AverageWaitTime), ts)
	log.Printf("sim: CSV report written to %s", outPath)
	return outPath, nil
}

// PrintConsoleReport prints a human-readable run summary to stdout.
func PrintConsoleReport(vehicles []*vehicle.Vehicle, stats vehicle.Statistics, report CongestionReport) {
	round2 := func(x float64) float64 { return math.Round(x*100) / 100 }

	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Vehicles tracked: %d (active=%d, arrived=%d)\n", stats.TotalVehicles, stats.ActiveVehicles, stats.ArrivedVehicles)
	fmt.Printf("Cars=%d Bicycles=%d Pedestrians=%d\n",
		stats.VehiclesByMode["car"], stats.VehiclesByMode["bicycle"], stats.VehiclesByMode["pedestrian"])
	fmt.Printf("Average wait: %.2f sec, total reroutes: %d\n", round2(stats.AverageWaitTime), stats.TotalReroutes)

	fmt.Printf("Average edge density: %.2f, average congestion probability: %.2f\n",
		round2(report.GlobalStats.AverageDensity), round2(report.GlobalStats.AverageCongestionProbability))

	if len(report.Bottlenecks) > 0 {
		fmt.Println("Top bottlenecks:")
		limit := len(report.Bottlenecks)
		if limit > 5 {
			limit = 5
		}
		for _, b := range report.Bottlenecks[:limit] {
			fmt.Printf("  %s -> %s density=%.2f probability=%.2f\n", b.From, b.To, round2(b.Density), round2(b.Probability))
		}
	}
	if len(report.CongestedIntersections) > 0 {
		fmt.Println("Most congested intersections:")
		for _, n := range report.CongestedIntersections {
			fmt.Printf("  %s congestion=%.2f\n", n.Node, round2(n.Congestion))
		}
	}
}
