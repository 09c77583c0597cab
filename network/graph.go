// Package network implements the road-network graph store: nodes with
// 2-D coordinates, directed edges carrying distance, mode whitelist and
// one-way flag. A RoadNetwork is immutable after Load.
package network

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Mode is a travel mode a vehicle may use.
type Mode string

const (
	ModeCar        Mode = "car"
	ModeBicycle    Mode = "bicycle"
	ModePedestrian Mode = "pedestrian"
)

// Node is a stable, named intersection with coordinates used only as
// the pathfinder heuristic input and for edge-length caching.
type Node struct {
	ID string
	X  float64
	Y  float64
}

// EdgeKey is the canonical key for every per-edge map (multipliers,
// capacities, occupancy, blockages).
type EdgeKey struct {
	From string
	To   string
}

// String renders the wire form "from,to" for serializing tuple-keyed
// maps (multipliers, capacities, occupancy) to JSON.
func (k EdgeKey) String() string { return k.From + "," + k.To }

// Edge is a directed road segment. Immutable after Load.
type Edge struct {
	From         string
	To           string
	Distance     float64
	AllowedModes map[Mode]bool
	OneWay       bool
}

// Key returns the EdgeKey for this edge.
func (e *Edge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }

// AllowsMode reports whether the edge may be used by the given mode.
func (e *Edge) AllowsMode(m Mode) bool { return e.AllowedModes[m] }

// gnode is the gonum graph.Node implementation backing each Node.
type gnode struct {
	id  int64
	key string
}

func (n gnode) ID() int64 { return n.id }

// gedge is the gonum graph.Edge implementation backing each Edge.
type gedge struct {
	from, to gnode
	data     *Edge
}

func (e gedge) From() graph.Node         { return e.from }
func (e gedge) To() graph.Node           { return e.to }
func (e gedge) ReversedEdge() graph.Edge { return gedge{from: e.to, to: e.from, data: e.data} }

// RoadNetwork is the immutable-after-load directed road network.
type RoadNetwork struct {
	nodes map[string]*Node
	edges map[EdgeKey]*Edge
	out   map[string][]*Edge

	topo   *simple.DirectedGraph
	gnodes map[string]gnode
	names  map[int64]string
	nextID int64
}

// New returns an empty RoadNetwork ready for population via AddNode/AddEdge.
func New() *RoadNetwork {
	return &RoadNetwork{
		nodes:  make(map[string]*Node),
		edges:  make(map[EdgeKey]*Edge),
		out:    make(map[string][]*Edge),
		topo:   simple.NewDirectedGraph(),
		gnodes: make(map[string]gnode),
		names:  make(map[int64]string),
	}
}

// AddNode inserts a node. Calling AddNode twice with the same id is a no-op.
func (g *RoadNetwork) AddNode(id string, x, y float64) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	n := &Node{ID: id, X: x, Y: y}
	g.nodes[id] = n
	gn := gnode{id: g.nextID, key: id}
	g.nextID++
	g.gnodes[id] = gn
	g.names[gn.id] = id
	g.topo.AddNode(gn)
}

// AddEdge inserts a directed edge (from, to) with the given attributes.
// If oneWay is false the loader is expected to call AddEdge twice
// (forward and reverse) — AddEdge itself never auto-inserts the
// reverse direction.
func (g *RoadNetwork) AddEdge(from, to string, distance float64, modes map[Mode]bool, oneWay bool) error {
	fn, ok := g.gnodes[from]
	if !ok {
		return fmt.Errorf("network: unknown from-node %q", from)
	}
	tn, ok := g.gnodes[to]
	if !ok {
		return fmt.Errorf("network: unknown to-node %q", to)
	}
	e := &Edge{From: from, To: to, Distance: distance, AllowedModes: modes, OneWay: oneWay}
	key := e.Key()
	g.edges[key] = e
	g.out[from] = append(g.out[from], e)
	g.topo.SetEdge(gedge{from: fn, to: tn, data: e})
	return nil
}

// Node returns the node by id, or nil if absent.
func (g *RoadNetwork) Node(id string) *Node { return g.nodes[id] }

// Nodes returns every node id in the network.
func (g *RoadNetwork) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Edge returns the edge (from,to) or nil if absent.
func (g *RoadNetwork) Edge(from, to string) *Edge { return g.edges[EdgeKey{From: from, To: to}] }

// Edges returns every directed edge in the network.
func (g *RoadNetwork) Edges() []*Edge {
	all := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		all = append(all, e)
	}
	return all
}

// Out returns the outgoing edges of a node.
func (g *RoadNetwork) Out(nodeID string) []*Edge { return g.out[nodeID] }

// OutDegree returns the number of outgoing edges of a node.
func (g *RoadNetwork) OutDegree(nodeID string) int { return len(g.out[nodeID]) }

// gonumNode resolves a domain node id to its gonum graph.Node; the
// boolean is false when the id is absent.
func (g *RoadNetwork) gonumNode(id string) (graph.Node, bool) {
	gn, ok := g.gnodes[id]
	return gn, ok
}

// GonumNode exposes the gonum graph.Node backing a domain node id, for
// callers (e.g. pathfind.Search) that drive gonum algorithms directly.
func (g *RoadNetwork) GonumNode(id string) (graph.Node, bool) { return g.gonumNode(id) }

// Topology exposes the underlying gonum graph for algorithms that want
// it directly rather than through RoadNetwork's own accessors.
func (g *RoadNetwork) Topology() graph.Directed { return g.topo }

// NameOf resolves a gonum node id back to its domain string id.
func (g *RoadNetwork) NameOf(id int64) (string, bool) {
	s, ok := g.names[id]
	return s, ok
}

// EuclideanDistance is the admissible heuristic input: straight-line
// distance between two nodes' coordinates.
func (g *RoadNetwork) EuclideanDistance(a, b string) float64 {
	na, oka := g.nodes[a]
	nb, okb := g.nodes[b]
	if !oka || !okb {
		return 0
	}
	dx := na.X - nb.X
	dy := na.Y - nb.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// --- JSON loading ---

type rawGraph struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type rawEdge struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Distance     float64  `json:"distance"`
	AllowedModes []string `json:"allowed_modes"`
	OneWay       *bool    `json:"one_way,omitempty"`
}

// Load parses a graph JSON document (`{nodes:[...], edges:[...]}`) and
// builds a RoadNetwork. Non-one-way edges are inserted in both
// directions so an undirected road segment is always traversable
// either way.
func Load(r io.Reader) (*RoadNetwork, error) {
	dec := json.NewDecoder(r)
	var raw rawGraph
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("network: decode graph: %w", err)
	}
	g := New()
	for _, n := range raw.Nodes {
		g.AddNode(n.ID, n.X, n.Y)
	}
	for _, e := range raw.Edges {
		modes := make(map[Mode]bool, len(e.AllowedModes))
		for _, m := range e.AllowedModes {
			modes[Mode(m)] = true
		}
		oneWay := e.OneWay != nil && *e.OneWay
		if err := g.AddEdge(e.From, e.To, e.Distance, modes, oneWay); err != nil {
			return nil, err
		}
		if !oneWay {
			if err := g.AddEdge(e.To, e.From, e.Distance, modes, oneWay); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
