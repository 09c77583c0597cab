package sim

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"urbannav/backend/network"
)

// hotspotOutDegreeFraction selects the top fraction (by out-degree) of
// nodes as hotspot candidates.
const hotspotOutDegreeFraction = 5 // top 1/5th, i.e. 20%

// hotspotEdgeChance is the per-edge probability an edge leaving a
// candidate hotspot node becomes an actual hotspot.
const hotspotEdgeChance = 0.3

// hotspotCongestionGate is the minimum global congestion factor below
// which hotspot penalties are not applied at all this tick.
const hotspotCongestionGate = 0.3

// hotspotMaxMultiplier caps how far a hotspot penalty can push an
// edge's multiplier in a single tick.
const hotspotMaxMultiplier = 5.0

// selectHotspots picks congestion-prone edges from nodes with the
// highest out-degree: the busiest intersections are the most likely
// source of recurring bottlenecks.
func selectHotspots(net *network.RoadNetwork, rng *rand.Rand) []network.EdgeKey {
	nodes := net.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		return net.OutDegree(nodes[i]) > net.OutDegree(nodes[j])
	})
	count := len(nodes) / hotspotOutDegreeFraction
	if count < 1 {
		count = 1
	}
	if count > len(nodes) {
		count = len(nodes)
	}

	var hotspots []network.EdgeKey
	for _, node := range nodes[:count] {
		for _, e := range net.Out(node) {
			if rng.Float64() < hotspotEdgeChance {
				hotspots = append(hotspots, e.Key())
			}
		}
	}
	return hotspots
}

// applyHotspotPenalty scales up each hotspot edge's multiplier in
// proportion to the current global congestion factor, gated on that
// factor clearing hotspotCongestionGate so quiet periods stay quiet.
func applyHotspotPenalty(multipliers map[network.EdgeKey]float64, hotspots []network.EdgeKey, congestionFactor float64, rng *rand.Rand) {
	if congestionFactor <= hotspotCongestionGate {
		return
	}
	for _, key := range hotspots {
		base, ok := multipliers[key]
		if !ok {
			continue
		}
		factor := distuv.Uniform{Min: 0.5, Max: 2.0, Src: rng}.Rand()
		timePenalty := 1.0 + congestionFactor*factor
		penalized := base * timePenalty
		if penalized > hotspotMaxMultiplier {
			penalized = hotspotMaxMultiplier
		}
		multipliers[key] = penalized
	}
}
