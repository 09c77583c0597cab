// Package data bundles the default demo road graph used when the
// engine is started without an explicit graph file.
package data

import (
	"bytes"
	_ "embed"

	"urbannav/backend/network"
)

//go:embed demo_graph.json
var demoGraphJSON []byte

// DefaultGraph parses the embedded demo graph: a small A-B-C-D
// corridor with a B-E-C bypass, matching the node names used in the
// engine's own end-to-end test scenarios.
func DefaultGraph() (*network.RoadNetwork, error) {
	return network.Load(bytes.NewReader(demoGraphJSON))
}
