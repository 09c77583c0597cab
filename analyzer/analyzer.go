// Package analyzer computes per-edge traffic density, congestion
// level/probability, multiplier sampling with a capped rolling
// history, and the reporting surface built on top of it (bottlenecks,
// per-node congestion, trend prediction, global statistics).
package analyzer

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"urbannav/backend/network"
	"urbannav/backend/vehicle"
)

// BaseEdgeCapacity is the reference vehicle-capacity-usage units an
// edge of zero length can hold before being considered saturated.
const BaseEdgeCapacity = 3.0

// Congestion level thresholds, expressed as upper-bound density.
const (
	lowThreshold      = 0.2
	mediumThreshold   = 0.4
	highThreshold     = 0.7
	criticalThreshold = 1.0
)

// Level is a named congestion band.
type Level string

const (
	LevelFreeFlow  Level = "free_flow"
	LevelLight     Level = "light"
	LevelModerate  Level = "moderate"
	LevelHeavy     Level = "heavy"
	LevelCongested Level = "congested"
)

// multiplierRange is the [min,max) a level's multiplier is drawn from.
type multiplierRange struct{ min, max float64 }

var trafficRanges = map[Level]multiplierRange{
	LevelFreeFlow:  {0.5, 0.8},
	LevelLight:     {1.0, 1.5},
	LevelModerate:  {1.5, 2.5},
	LevelHeavy:     {2.5, 4.0},
	LevelCongested: {4.0, 6.0},
}

// maxHistorySamples bounds the rolling per-edge multiplier history.
const maxHistorySamples = 100

// Analyzer tracks per-edge capacity and a rolling congestion history,
// deriving density, congestion level/probability, and sampled
// multipliers from the network topology and current vehicle manager.
type Analyzer struct {
	net     *network.RoadNetwork
	manager *vehicle.Manager

	capacities map[network.EdgeKey]float64
	history    map[network.EdgeKey][]float64
}

// New builds an Analyzer over the given network and vehicle manager,
// computing each edge's capacity once up front (capacity scales with
// distance: longer edges hold more vehicles).
func New(net *network.RoadNetwork, manager *vehicle.Manager) *Analyzer {
	a := &Analyzer{
		net:        net,
		manager:    manager,
		capacities: make(map[network.EdgeKey]float64),
		history:    make(map[network.EdgeKey][]float64),
	}
	for _, e := range net.Edges() {
		a.capacities[e.Key()] = BaseEdgeCapacity * (1 + e.Distance/100)
	}
	return a
}

func (a *Analyzer) capacity(key network.EdgeKey) float64 {
	if c, ok := a.capacities[key]; ok {
		return c
	}
	return BaseEdgeCapacity
}

// Density returns the current usage/capacity ratio for an edge.
func (a *Analyzer) Density(from, to string) float64 {
	key := network.EdgeKey{From: from, To: to}
	usage := a.manager.EdgeCapacityUsage(from, to)
	d := usage / a.capacity(key)
	if d < 0 {
		return 0
	}
	return d
}

// CongestionLevel classifies an edge's current density.
func (a *Analyzer) CongestionLevel(from, to string) Level {
	d := a.Density(from, to)
	switch {
	case d < lowThreshold:
		return LevelFreeFlow
	case d < mediumThreshold:
		return LevelLight
	case d < highThreshold:
		return LevelModerate
	case d < criticalThreshold:
		return LevelHeavy
	default:
		return LevelCongested
	}
}

// SampleMultiplier draws a fresh multiplier for the edge from its
// congestion-level range and records it into the edge's rolling
// history (capped at the last 100 samples).
func (a *Analyzer) SampleMultiplier(from, to string, rng *rand.Rand) float64 {
	level := a.CongestionLevel(from, to)
	r := trafficRanges[level]
	dist := distuv.Uniform{Min: r.min, Max: r.max, Src: rng}
	mult := dist.Rand()

	key := network.EdgeKey{From: from, To: to}
	hist := append(a.history[key], mult)
	if len(hist) > maxHistorySamples {
		hist = hist[len(hist)-maxHistorySamples:]
	}
	a.history[key] = hist
	return mult
}

// CongestionProbability blends current density with the historical
// average multiplier for the edge (a high historical average nudges
// the probability up, capped at a 30% contribution).
func (a *Analyzer) CongestionProbability(from, to string) float64 {
	density := a.Density(from, to)
	base := density / criticalThreshold
	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}

	key := network.EdgeKey{From: from, To: to}
	hist := a.history[key]
	if len(hist) == 0 {
		return base
	}
	avg := stat.Mean(hist, nil)
	factor := (avg - 1.0) / 4.0
	if factor < 0 {
		factor = 0
	}
	if factor > 0.3 {
		factor = 0.3
	}
	p := base + factor
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// UpdateMultipliers rebuilds edge occupancy from the vehicle manager
// and resamples every edge's multiplier into the supplied table — the
// per-tick core of the dynamic traffic model.
func (a *Analyzer) UpdateMultipliers(multipliers map[network.EdgeKey]float64, rng *rand.Rand) {
	a.manager.UpdateEdgeOccupancy()
	for _, e := range a.net.Edges() {
		multipliers[e.Key()] = a.SampleMultiplier(e.From, e.To, rng)
	}
}

// Bottleneck is a single congested-edge report entry.
type Bottleneck struct {
	From, To string
	Density  float64
}

// Bottlenecks returns every edge at or above the density threshold,
// most congested first.
func (a *Analyzer) Bottlenecks(threshold float64) []Bottleneck {
	var out []Bottleneck
	for key := range a.capacities {
		d := a.Density(key.From, key.To)
		if d >= threshold {
			out = append(out, Bottleneck{From: key.From, To: key.To, Density: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Density > out[j].Density })
	return out
}

// NodeCongestion averages the density of a node's outgoing edges.
func (a *Analyzer) NodeCongestion(node string) float64 {
	out := a.net.Out(node)
	if len(out) == 0 {
		return 0
	}
	var sum float64
	for _, e := range out {
		sum += a.Density(e.From, e.To)
	}
	return sum / float64(len(out))
}

// PredictCongestion extrapolates the linear trend of the last 10
// history samples forward by timeSteps ticks and converts the
// projected multiplier to a probability. Falls back to the current
// probability when fewer than 3 samples exist.
func (a *Analyzer) PredictCongestion(from, to string, timeSteps int) float64 {
	key := network.EdgeKey{From: from, To: to}
	hist := a.history[key]
	if len(hist) < 3 {
		return a.CongestionProbability(from, to)
	}
	recent := hist
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	var trend float64
	if len(recent) > 1 {
		trend = (recent[len(recent)-1] - recent[0]) / float64(len(recent))
	}
	predictedMult := recent[len(recent)-1] + trend*float64(timeSteps)
	p := (predictedMult - 0.5) / 4.5
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// GlobalStatistics summarizes density/probability/congestion-level
// distribution across every edge in the network.
type GlobalStatistics struct {
	AverageDensity               float64
	AverageCongestionProbability float64
	TotalEdges                   int
	CongestionDistribution       map[Level]float64 // percentage per level
	TopBottlenecks               []Bottleneck
}

// Global computes the network-wide traffic statistics snapshot.
func (a *Analyzer) Global() GlobalStatistics {
	counts := map[Level]int{
		LevelFreeFlow: 0, LevelLight: 0, LevelModerate: 0, LevelHeavy: 0, LevelCongested: 0,
	}
	var densitySum, probSum float64
	edges := a.net.Edges()
	for _, e := range edges {
		d := a.Density(e.From, e.To)
		p := a.CongestionProbability(e.From, e.To)
		level := a.CongestionLevel(e.From, e.To)
		densitySum += d
		probSum += p
		counts[level]++
	}
	total := len(edges)
	dist := make(map[Level]float64, len(counts))
	for level, c := range counts {
		if total > 0 {
			dist[level] = float64(c) / float64(total) * 100
		}
	}
	bottlenecks := a.Bottlenecks(0.6)
	top := bottlenecks
	if len(top) > 5 {
		top = top[:5]
	}
	var avgDensity, avgProb float64
	if total > 0 {
		avgDensity = densitySum / float64(total)
		avgProb = probSum / float64(total)
	}
	return GlobalStatistics{
		AverageDensity:               avgDensity,
		AverageCongestionProbability: avgProb,
		TotalEdges:                   total,
		CongestionDistribution:       dist,
		TopBottlenecks:               top,
	}
}

// EdgeTraffic is one edge's full traffic snapshot, for visualization.
type EdgeTraffic struct {
	From, To           string
	Density            float64
	CongestionLevel    Level
	CongestionProbability float64
	VehicleCount       int
	Capacity           float64
}

// EdgeTrafficData returns a full traffic snapshot for every edge.
func (a *Analyzer) EdgeTrafficData() []EdgeTraffic {
	edges := a.net.Edges()
	out := make([]EdgeTraffic, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeTraffic{
			From:                  e.From,
			To:                    e.To,
			Density:               a.Density(e.From, e.To),
			CongestionLevel:       a.CongestionLevel(e.From, e.To),
			CongestionProbability: a.CongestionProbability(e.From, e.To),
			VehicleCount:          a.manager.EdgeVehicleCount(e.From, e.To),
			Capacity:              a.capacity(e.Key()),
		})
	}
	return out
}
