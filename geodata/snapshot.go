package geodata

import (
	"encoding/gob"
	"fmt"
	"os"

	"safe-route-server/routing"
)

// SaveGraphSnapshot writes a built graph to disk so later starts can
// skip the one-time build. The snapshot is the built graph, not any
// per-request result.
func SaveGraphSnapshot(path string, g *routing.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create graph snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(g); err != nil {
		return fmt.Errorf("encode graph snapshot: %w", err)
	}
	return nil
}

// LoadGraphSnapshot reads a graph written by SaveGraphSnapshot.
func LoadGraphSnapshot(path string) (*routing.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var g routing.Graph
	if err := gob.NewDecoder(f).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph snapshot %s: %w", path, err)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph snapshot %s is empty", path)
	}
	if len(g.Component) == 0 {
		// Snapshots from older builds predate component labels.
		g.LabelComponents()
	}
	return &g, nil
}
