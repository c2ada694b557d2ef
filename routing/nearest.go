package routing

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

// nodePointer adapts a Node to the quadtree's Pointer interface.
type nodePointer struct {
	node Node
}

func (p nodePointer) Point() orb.Point { return p.node.Point }

// NodeIndex answers nearest-node queries in sub-linear time. Built once
// alongside the graph and read-only afterwards.
type NodeIndex struct {
	tree          *quadtree.Quadtree
	maxSnapMeters float64
}

// NewNodeIndex indexes every graph node into a quadtree. maxSnapMeters
// bounds how far a query point may be from the network before Resolve
// refuses to snap it.
func NewNodeIndex(g *Graph, maxSnapMeters float64) (*NodeIndex, error) {
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("cannot index an empty graph")
	}
	if maxSnapMeters <= 0 {
		return nil, fmt.Errorf("max snap distance must be positive, got %f", maxSnapMeters)
	}

	var bound orb.Bound
	first := true
	for _, n := range g.Nodes {
		if first {
			bound = orb.Bound{Min: n.Point, Max: n.Point}
			first = false
			continue
		}
		bound = bound.Extend(n.Point)
	}
	// Avoid a degenerate zero-area bound when all nodes are collinear.
	bound.Min[0] -= 1e-6
	bound.Min[1] -= 1e-6
	bound.Max[0] += 1e-6
	bound.Max[1] += 1e-6

	tree := quadtree.New(bound)
	for _, n := range g.Nodes {
		if err := tree.Add(nodePointer{node: n}); err != nil {
			return nil, fmt.Errorf("index node %d: %w", n.ID, err)
		}
	}

	return &NodeIndex{tree: tree, maxSnapMeters: maxSnapMeters}, nil
}

// Resolve snaps an arbitrary point to the nearest graph node and
// reports the snap distance in meters. Points beyond the configured
// snap distance yield ErrNoCoverage so that a request far outside the
// regional extract is rejected instead of silently routed from an
// unrelated location.
func (idx *NodeIndex) Resolve(point orb.Point) (Node, float64, error) {
	found := idx.tree.Find(point)
	if found == nil {
		return Node{}, 0, ErrNoCoverage
	}

	node := found.(nodePointer).node
	snap := geo.DistanceHaversine(point, node.Point)
	if snap > idx.maxSnapMeters {
		return Node{}, 0, fmt.Errorf("%w: nearest node is %.0f m away (max %.0f m)",
			ErrNoCoverage, snap, idx.maxSnapMeters)
	}
	return node, snap, nil
}
