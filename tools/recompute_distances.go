// Command recompute_distances rewrites the distance field of every edge
// in a graph JSON file from its nodes' x,y coordinates, for graphs that
// were hand-edited and have gone stale.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

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

type graphFile struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

func euclidean(a, b rawNode) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: recompute_distances <graph-json-file>")
		os.Exit(1)
	}
	path := os.Args[1]
	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var gf graphFile
	if err := json.Unmarshal(b, &gf); err != nil {
		panic(err)
	}

	byID := make(map[string]rawNode, len(gf.Nodes))
	for _, n := range gf.Nodes {
		byID[n.ID] = n
	}

	var updated int
	for i, e := range gf.Edges {
		from, ok1 := byID[e.From]
		to, ok2 := byID[e.To]
		if !ok1 || !ok2 {
			fmt.Printf("skipping edge %s->%s: unknown endpoint\n", e.From, e.To)
			continue
		}
		d := math.Round(euclidean(from, to)*1000) / 1000
		if d != gf.Edges[i].Distance {
			gf.Edges[i].Distance = d
			updated++
		}
	}

	out, err := json.MarshalIndent(gf, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		panic(err)
	}
	fmt.Printf("recomputed %d of %d edge distances\n", updated, len(gf.Edges))
}
