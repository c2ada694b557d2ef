package routing

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CostFunc maps an edge to its traversal cost for the current request.
// Must be deterministic and non-negative.
type CostFunc func(Edge) float64

// Route is a solved path. Cost is the risk-adjusted total; DistanceM is
// the physical length (sum of base edge lengths), which the caller
// reports alongside the cost.
type Route struct {
	Nodes     []int64
	Line      orb.LineString
	Cost      float64
	DistanceM float64
}

type pqItem struct {
	nodeID int64
	cost   float64
	hops   int
	index  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	// Equal-cost candidates settle in hop order for determinism.
	return pq[i].hops < pq[j].hops
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// How often the search loop polls the context.
const deadlineCheckInterval = 256

// FindRoute runs Dijkstra from start to goal using the given cost
// function. All working state is request-local so concurrent searches
// over the shared graph do not interfere. Paths of equal cost resolve
// to the one with fewer edges. The context deadline aborts long
// searches with ErrRouteTimeout.
func FindRoute(ctx context.Context, g *Graph, start, goal int64, cost CostFunc) (*Route, error) {
	startNode, ok := g.Nodes[start]
	if !ok {
		return nil, fmt.Errorf("start node %d not in graph", start)
	}
	if _, ok := g.Nodes[goal]; !ok {
		return nil, fmt.Errorf("goal node %d not in graph", goal)
	}
	if !g.SameComponent(start, goal) {
		return nil, fmt.Errorf("%w: nodes %d and %d are in different components", ErrNoPath, start, goal)
	}

	if start == goal {
		return &Route{
			Nodes: []int64{start},
			Line:  orb.LineString{startNode.Point},
		}, nil
	}

	dist := make(map[int64]float64)
	hops := make(map[int64]int)
	prev := make(map[int64]int64)
	prevEdge := make(map[int64]Edge)
	visited := make(map[int64]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	dist[start] = 0
	heap.Push(pq, &pqItem{nodeID: start})

	pops := 0
	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if visited[current.nodeID] {
			continue
		}
		visited[current.nodeID] = true

		pops++
		if pops%deadlineCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRouteTimeout, err)
			}
		}

		if current.nodeID == goal {
			break
		}

		for _, edge := range g.Edges[current.nodeID] {
			if visited[edge.ToID] {
				continue
			}
			c := cost(edge)
			if c < 0 || math.IsNaN(c) {
				return nil, fmt.Errorf("cost function returned %f for edge %d->%d", c, edge.FromID, edge.ToID)
			}

			newCost := dist[current.nodeID] + c
			newHops := hops[current.nodeID] + 1
			old, seen := dist[edge.ToID]
			if !seen || newCost < old || (newCost == old && newHops < hops[edge.ToID]) {
				dist[edge.ToID] = newCost
				hops[edge.ToID] = newHops
				prev[edge.ToID] = current.nodeID
				prevEdge[edge.ToID] = edge
				heap.Push(pq, &pqItem{nodeID: edge.ToID, cost: newCost, hops: newHops})
			}
		}
	}

	if !visited[goal] {
		return nil, fmt.Errorf("%w: search exhausted without reaching node %d", ErrNoPath, goal)
	}

	return reconstruct(g, start, goal, dist[goal], prev, prevEdge), nil
}

// reconstruct walks the predecessor chain backwards, summing physical
// edge lengths as it goes.
func reconstruct(g *Graph, start, goal int64, cost float64, prev map[int64]int64, prevEdge map[int64]Edge) *Route {
	path := []int64{goal}
	distance := 0.0
	for cur := goal; cur != start; {
		distance += prevEdge[cur].Length
		cur = prev[cur]
		path = append(path, cur)
	}

	// Reverse into start-to-goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	line := make(orb.LineString, 0, len(path))
	for _, id := range path {
		line = append(line, g.Nodes[id].Point)
	}

	return &Route{
		Nodes:     path,
		Line:      line,
		Cost:      cost,
		DistanceM: distance,
	}
}
