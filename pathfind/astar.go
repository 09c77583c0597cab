// Package pathfind implements the shortest-route search: A* over a
// per-call weighted view of the road network, filtered by travel mode
// and the current blocked-edge set.
package pathfind

import (
	"errors"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"

	"urbannav/backend/network"
)

// ErrNoRoute is returned when no path connects start to goal under the
// current mode/blocked-edge constraints.
var ErrNoRoute = errors.New("pathfind: no route")

// ErrUnknownNode is returned when start or goal does not exist in the network.
var ErrUnknownNode = errors.New("pathfind: unknown node")

// Search runs A* from start to goal, restricted to edges usable by mode
// and not present in blocked, weighting each usable edge by
// distance*multiplier (multiplier defaults to 1.0 when absent from the
// table). The heuristic is straight-line distance between node
// coordinates. It is admissible only while every multiplier on the
// optimal route is at least 1.0; the analyzer's free-flow range draws
// multipliers below 1.0, and on such edges the result is a good
// route rather than a guaranteed shortest one.
func Search(net *network.RoadNetwork, multipliers map[network.EdgeKey]float64, blocked map[network.EdgeKey]bool, start, goal string, mode network.Mode) ([]string, float64, error) {
	if net.Node(start) == nil || net.Node(goal) == nil {
		return nil, 0, ErrUnknownNode
	}
	view := network.NewWeightedView(net, multipliers, blocked, mode)

	sNode, ok := net.GonumNode(start)
	if !ok {
		return nil, 0, ErrUnknownNode
	}
	tNode, ok := net.GonumNode(goal)
	if !ok {
		return nil, 0, ErrUnknownNode
	}

	heuristic := func(x, y graph.Node) float64 {
		xName, _ := net.NameOf(x.ID())
		yName, _ := net.NameOf(y.ID())
		return net.EuclideanDistance(xName, yName)
	}

	shortest, _ := path.AStar(sNode, tNode, view, heuristic)
	nodes, weight := shortest.To(tNode.ID())
	if len(nodes) == 0 {
		return nil, 0, ErrNoRoute
	}

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		name, ok := net.NameOf(n.ID())
		if !ok {
			return nil, 0, ErrNoRoute
		}
		ids = append(ids, name)
	}
	return ids, weight, nil
}
