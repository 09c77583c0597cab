package network

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// WeightedView is a per-call gonum graph.Graph adapter, weighted through
// the Weight method that gonum's path package consults, over a
// RoadNetwork plus the live, frequently-changing state a route search
// needs: the current per-edge multiplier table, the blocked-edge set,
// and the travel mode. It never mutates the underlying RoadNetwork.
//
// Edge cost is edge.Distance * multiplier (default 1.0 if absent). An
// edge is absent from the weighted view entirely — not merely
// expensive — when the mode cannot use it or the edge is blocked, so
// gonum's search never traverses it.
type WeightedView struct {
	net         *RoadNetwork
	multipliers map[EdgeKey]float64
	blocked     map[EdgeKey]bool
	mode        Mode
}

// NewWeightedView builds the adapter handed to gonum's path.AStar.
func NewWeightedView(net *RoadNetwork, multipliers map[EdgeKey]float64, blocked map[EdgeKey]bool, mode Mode) *WeightedView {
	return &WeightedView{net: net, multipliers: multipliers, blocked: blocked, mode: mode}
}

func (v *WeightedView) usable(e *Edge) bool {
	if !e.AllowsMode(v.mode) {
		return false
	}
	if v.blocked[e.Key()] {
		return false
	}
	return true
}

func (v *WeightedView) Node(id int64) graph.Node {
	name, ok := v.net.NameOf(id)
	if !ok {
		return nil
	}
	gn, _ := v.net.gonumNode(name)
	return gn
}

func (v *WeightedView) Nodes() graph.Nodes {
	ids := v.net.Nodes()
	nodes := make([]graph.Node, 0, len(ids))
	for _, id := range ids {
		if gn, ok := v.net.gonumNode(id); ok {
			nodes = append(nodes, gn)
		}
	}
	return iterator.NewNodeSlice(nodes)
}

func (v *WeightedView) From(id int64) graph.Nodes {
	name, ok := v.net.NameOf(id)
	if !ok {
		return iterator.NewNodeSlice(nil)
	}
	out := v.net.Out(name)
	nodes := make([]graph.Node, 0, len(out))
	for _, e := range out {
		if !v.usable(e) {
			continue
		}
		if gn, ok := v.net.gonumNode(e.To); ok {
			nodes = append(nodes, gn)
		}
	}
	return iterator.NewNodeSlice(nodes)
}

func (v *WeightedView) HasEdgeBetween(xid, yid int64) bool {
	return v.HasEdgeFromTo(xid, yid) || v.HasEdgeFromTo(yid, xid)
}

func (v *WeightedView) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := v.edgeBetween(uid, vid)
	return ok
}

func (v *WeightedView) edgeBetween(uid, vid int64) (*Edge, bool) {
	uname, ok := v.net.NameOf(uid)
	if !ok {
		return nil, false
	}
	vname, ok := v.net.NameOf(vid)
	if !ok {
		return nil, false
	}
	e := v.net.Edge(uname, vname)
	if e == nil || !v.usable(e) {
		return nil, false
	}
	return e, true
}

func (v *WeightedView) Edge(uid, vid int64) graph.Edge {
	e, ok := v.edgeBetween(uid, vid)
	if !ok {
		return nil
	}
	ufrom, _ := v.net.gonumNode(e.From)
	uto, _ := v.net.gonumNode(e.To)
	return gedge{from: ufrom, to: uto, data: e}
}

// Weight implements path.Weighted: cost = distance * multiplier,
// default multiplier 1.0 when the table has no entry for the edge.
func (v *WeightedView) Weight(xid, yid int64) (float64, bool) {
	e, ok := v.edgeBetween(xid, yid)
	if !ok {
		return 0, false
	}
	mult, has := v.multipliers[e.Key()]
	if !has {
		mult = 1.0
	}
	return e.Distance * mult, true
}
