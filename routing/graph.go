package routing

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/zap"
)

// RoadSegment is one raw road polyline as supplied by the data loader,
// with the OSM-style attributes that feed surface classification.
type RoadSegment struct {
	Line    orb.LineString
	Surface string
	Highway string
}

// Node represents a graph node (intersection or segment vertex).
type Node struct {
	ID    int64
	Point orb.Point // lon, lat
}

// Edge is an undirected road edge stored once per direction in the
// adjacency map. Length is the physical length in meters and is the
// base cost; risk-adjusted costs are computed per request, never stored.
type Edge struct {
	FromID  int64
	ToID    int64
	Length  float64
	Surface SurfaceClass
}

// Graph is the routable road network. Built once at startup and
// read-only afterwards; concurrent requests share it without locking.
type Graph struct {
	Nodes map[int64]Node
	Edges map[int64][]Edge

	// Component labels nodes by connected component so that requests
	// across disconnected parts of the network fail fast with ErrNoPath
	// instead of exhausting a search.
	Component map[int64]int
}

func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[int64]Node),
		Edges:     make(map[int64][]Edge),
		Component: make(map[int64]int),
	}
}

// AddNode inserts a node, replacing any node with the same ID.
func (g *Graph) AddNode(id int64, lon, lat float64) {
	g.Nodes[id] = Node{ID: id, Point: orb.Point{lon, lat}}
}

// AddEdge inserts an undirected edge between two existing nodes.
func (g *Graph) AddEdge(from, to int64, length float64, surface SurfaceClass) {
	g.Edges[from] = append(g.Edges[from], Edge{FromID: from, ToID: to, Length: length, Surface: surface})
	g.Edges[to] = append(g.Edges[to], Edge{FromID: to, ToID: from, Length: length, Surface: surface})
}

// coordKey is a coordinate quantized to 1e-6 degrees (about 0.1 m).
// Segments whose endpoints agree within that tolerance share a node,
// which is what stitches separate segments into a connected network.
type coordKey struct {
	lonE6 int64
	latE6 int64
}

func quantize(p orb.Point) coordKey {
	return coordKey{
		lonE6: int64(math.Round(p[0] * 1e6)),
		latE6: int64(math.Round(p[1] * 1e6)),
	}
}

func (k coordKey) point() orb.Point {
	return orb.Point{float64(k.lonE6) / 1e6, float64(k.latE6) / 1e6}
}

func validSegment(seg RoadSegment) error {
	if len(seg.Line) < 2 {
		return fmt.Errorf("%w: %d coordinates", ErrMalformedGeometry, len(seg.Line))
	}
	for _, p := range seg.Line {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrMalformedGeometry)
		}
		if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
			return fmt.Errorf("%w: coordinate (%f, %f) out of range", ErrMalformedGeometry, p[0], p[1])
		}
	}
	return nil
}

// BuildGraph converts road segments into a routable graph. Malformed
// segments are skipped and logged; the build only fails when the input
// is empty or yields no usable edges at all, which is a data bug the
// caller must hear about.
func BuildGraph(segments []RoadSegment, logger *zap.SugaredLogger) (*Graph, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no road segments to build graph from")
	}

	g := NewGraph()
	nodeIDs := make(map[coordKey]int64, len(segments)*2)
	var nextID int64
	skipped := 0

	nodeFor := func(k coordKey) int64 {
		if id, ok := nodeIDs[k]; ok {
			return id
		}
		nextID++
		nodeIDs[k] = nextID
		g.Nodes[nextID] = Node{ID: nextID, Point: k.point()}
		return nextID
	}

	for _, seg := range segments {
		if err := validSegment(seg); err != nil {
			skipped++
			logger.Warnw("skipping road segment", "error", err)
			continue
		}

		surface := ClassifySurface(seg.Surface, seg.Highway)
		for i := 0; i < len(seg.Line)-1; i++ {
			ku := quantize(seg.Line[i])
			kv := quantize(seg.Line[i+1])
			if ku == kv {
				// Degenerate pair below the dedup tolerance.
				continue
			}
			u := nodeFor(ku)
			v := nodeFor(kv)
			length := geo.DistanceHaversine(ku.point(), kv.point())
			g.AddEdge(u, v, length, surface)
		}
	}

	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("no usable road segments (skipped %d of %d)", skipped, len(segments))
	}

	g.LabelComponents()

	logger.Infow("road graph built",
		"nodes", len(g.Nodes),
		"edges", g.EdgeCount(),
		"components", g.ComponentCount(),
		"skippedSegments", skipped,
	)
	return g, nil
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.Edges {
		n += len(edges)
	}
	return n / 2
}

// ComponentCount returns the number of connected components.
func (g *Graph) ComponentCount() int {
	max := 0
	for _, c := range g.Component {
		if c > max {
			max = c
		}
	}
	return max
}

// LabelComponents assigns a component label to every node with a BFS
// over the adjacency map. BuildGraph calls it; graphs assembled by hand
// must call it before routing.
func (g *Graph) LabelComponents() {
	g.Component = make(map[int64]int, len(g.Nodes))
	label := 0
	queue := make([]int64, 0, 64)

	for id := range g.Nodes {
		if _, seen := g.Component[id]; seen {
			continue
		}
		label++
		g.Component[id] = label
		queue = append(queue[:0], id)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range g.Edges[cur] {
				if _, seen := g.Component[e.ToID]; !seen {
					g.Component[e.ToID] = label
					queue = append(queue, e.ToID)
				}
			}
		}
	}
}

// SameComponent reports whether two nodes can possibly be connected.
func (g *Graph) SameComponent(a, b int64) bool {
	return g.Component[a] != 0 && g.Component[a] == g.Component[b]
}
