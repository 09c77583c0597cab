package pathfind

import (
	"testing"

	"urbannav/backend/network"
)

func buildGraph() *network.RoadNetwork {
	g := network.New()
	for _, n := range []struct {
		id   string
		x, y float64
	}{
		{"A", 0, 0}, {"B", 100, 0}, {"C", 200, 0}, {"D", 300, 0}, {"E", 150, 80},
	} {
		g.AddNode(n.id, n.x, n.y)
	}
	allModes := map[network.Mode]bool{network.ModeCar: true, network.ModeBicycle: true, network.ModePedestrian: true}
	carOnly := map[network.Mode]bool{network.ModeCar: true}
	add := func(from, to string, dist float64, modes map[network.Mode]bool) {
		g.AddEdge(from, to, dist, modes, true)
		g.AddEdge(to, from, dist, modes, true)
	}
	add("A", "B", 100, allModes)
	add("B", "C", 100, carOnly)
	add("C", "D", 100, allModes)
	add("B", "E", 50, allModes)
	add("E", "C", 50, allModes)
	return g
}

func TestSearchLinearPath(t *testing.T) {
	g := buildGraph()
	path, cost, err := Search(g, nil, nil, "A", "D", network.ModeCar)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"A", "B", "C", "D"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
	if cost != 300 {
		t.Fatalf("cost = %v, want 300", cost)
	}
}

func TestSearchBypassesBlockedEdge(t *testing.T) {
	g := buildGraph()
	blocked := map[network.EdgeKey]bool{
		{From: "B", To: "C"}: true,
		{From: "C", To: "B"}: true,
	}
	path, cost, err := Search(g, nil, blocked, "A", "D", network.ModeCar)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"A", "B", "E", "C", "D"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
	if cost != 300 {
		t.Fatalf("cost = %v, want 300", cost)
	}
}

func TestSearchModeFilterNoRoute(t *testing.T) {
	g := buildGraph()
	// Block the bypass so the only remaining route uses the car-only B->C edge.
	blocked := map[network.EdgeKey]bool{
		{From: "B", To: "E"}: true,
		{From: "E", To: "B"}: true,
		{From: "E", To: "C"}: true,
		{From: "C", To: "E"}: true,
	}
	_, _, err := Search(g, nil, blocked, "A", "D", network.ModePedestrian)
	if err != ErrNoRoute {
		t.Fatalf("Search error = %v, want ErrNoRoute", err)
	}
}

func TestSearchAccidentPenaltyRaisesCost(t *testing.T) {
	g := buildGraph()
	multipliers := map[network.EdgeKey]float64{
		{From: "B", To: "C"}: 2.0,
		{From: "C", To: "B"}: 2.0,
	}
	// Block the bypass so the penalized B->C edge stays on the only route:
	// 100 + 100*2 + 100.
	blocked := map[network.EdgeKey]bool{
		{From: "B", To: "E"}: true,
		{From: "E", To: "B"}: true,
		{From: "E", To: "C"}: true,
		{From: "C", To: "E"}: true,
	}
	_, cost, err := Search(g, multipliers, blocked, "A", "D", network.ModeCar)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if cost != 400 {
		t.Fatalf("cost = %v, want 400", cost)
	}
}

func TestSearchUnknownNode(t *testing.T) {
	g := buildGraph()
	if _, _, err := Search(g, nil, nil, "A", "nope", network.ModeCar); err != ErrUnknownNode {
		t.Fatalf("err = %v, want ErrUnknownNode", err)
	}
}
