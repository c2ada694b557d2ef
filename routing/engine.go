package routing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Config bundles the per-process routing knobs.
type Config struct {
	// MaxSnapMeters is the farthest a query point may be from the
	// network before it is rejected with ErrNoCoverage.
	MaxSnapMeters float64
	// SolveTimeout caps a single request's search time. Zero disables
	// the internal deadline; the caller's context still applies.
	SolveTimeout time.Duration
	Policy       PolicyConfig
	Selector     SelectorConfig
}

func DefaultConfig() Config {
	return Config{
		MaxSnapMeters: 500,
		SolveTimeout:  10 * time.Second,
		Policy:        DefaultPolicyConfig(),
		Selector:      DefaultSelectorConfig(),
	}
}

// Router owns the immutable graph, its spatial index, and the clinic
// set, and serves route requests. Safe for concurrent use: all request
// state lives in FindRoute's locals.
type Router struct {
	graph   *Graph
	index   *NodeIndex
	clinics []Clinic
	cfg     Config
	logger  *zap.SugaredLogger
}

// NewRouter wires a built graph and clinic set into a request-serving
// router. Empty inputs are construction bugs and fail immediately.
func NewRouter(graph *Graph, clinics []Clinic, cfg Config, logger *zap.SugaredLogger) (*Router, error) {
	if graph == nil || len(graph.Nodes) == 0 {
		return nil, fmt.Errorf("router requires a non-empty graph")
	}
	if len(clinics) == 0 {
		return nil, fmt.Errorf("router requires at least one clinic")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy config: %w", err)
	}

	index, err := NewNodeIndex(graph, cfg.MaxSnapMeters)
	if err != nil {
		return nil, err
	}

	return &Router{
		graph:   graph,
		index:   index,
		clinics: clinics,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// RouteResult is the full answer for one request: the solved graph
// path, the renderable geometry including the snap leg from the query
// point, and the clinic it leads to.
type RouteResult struct {
	Route       *Route
	Line        orb.LineString
	Cost        float64
	DistanceM   float64
	Kind        string
	Profile     RiskProfile
	Destination Clinic
	StartSnapM  float64
}

// BestRoute resolves the start point, picks candidate clinics, solves a
// risk-weighted route to each, and returns the cheapest. Mirrors the
// request flow the HTTP layer exposes.
func (r *Router) BestRoute(ctx context.Context, start orb.Point, week int, highRisk bool) (*RouteResult, error) {
	if week < 0 {
		return nil, fmt.Errorf("pregnancy week must be non-negative, got %d", week)
	}

	if r.cfg.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.SolveTimeout)
		defer cancel()
	}

	profile := r.cfg.Policy.ProfileFor(week, highRisk)
	costFn := func(e Edge) float64 { return r.cfg.Policy.Cost(e, profile) }

	startNode, startSnap, err := r.index.Resolve(start)
	if err != nil {
		return nil, err
	}

	candidates := SelectCandidates(start, r.clinics, r.cfg.Selector)

	var (
		best       *Route
		bestClinic Clinic
	)
	for _, clinic := range candidates {
		goalNode, _, err := r.index.Resolve(clinic.Point)
		if err != nil {
			r.logger.Debugw("clinic off network, skipping", "clinic", clinic.Name, "error", err)
			continue
		}

		route, err := FindRoute(ctx, r.graph, startNode.ID, goalNode.ID, costFn)
		switch {
		case errors.Is(err, ErrNoPath):
			r.logger.Debugw("clinic unreachable, skipping", "clinic", clinic.Name)
			continue
		case err != nil:
			return nil, err
		}

		if best == nil || route.Cost < best.Cost {
			best = route
			bestClinic = clinic
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: no reachable clinic among %d candidates", ErrNoPath, len(candidates))
	}

	// Prepend the raw query point so the rendered path starts where the
	// traveler actually is. The snap leg counts at base cost.
	line := best.Line
	if startSnap > 0 {
		line = append(orb.LineString{start}, line...)
	}

	return &RouteResult{
		Route:       best,
		Line:        line,
		Cost:        best.Cost + startSnap,
		DistanceM:   best.DistanceM + startSnap,
		Kind:        profile.Tier.RouteKind(),
		Profile:     profile,
		Destination: bestClinic,
		StartSnapM:  startSnap,
	}, nil
}

// Service gates requests on graph readiness. The HTTP layer holds one
// Service from process start; the router is swapped in atomically when
// the one-time build finishes, so in-flight requests either see the
// complete graph or ErrGraphNotReady, never a partial build.
type Service struct {
	router atomic.Pointer[Router]
}

func NewService() *Service { return &Service{} }

// Activate publishes a fully constructed router.
func (s *Service) Activate(r *Router) { s.router.Store(r) }

func (s *Service) Ready() bool { return s.router.Load() != nil }

func (s *Service) BestRoute(ctx context.Context, start orb.Point, week int, highRisk bool) (*RouteResult, error) {
	r := s.router.Load()
	if r == nil {
		return nil, ErrGraphNotReady
	}
	return r.BestRoute(ctx, start, week, highRisk)
}
