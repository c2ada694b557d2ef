package routing

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// scenarioRouter builds a router over real geometry on the equator: a
// paved detour A -> (0.001,0.002) -> (0.002,0.002) -> D (about 609 m)
// and an unpaved straight segment A -> D (about 334 m), with a clinic
// at D.
func scenarioRouter(t *testing.T, extraClinics ...Clinic) *Router {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()

	segments := []RoadSegment{
		seg("asphalt", "", orb.Point{0, 0}, orb.Point{0.001, 0.002}, orb.Point{0.002, 0.002}, orb.Point{0.003, 0}),
		seg("dirt", "", orb.Point{0, 0}, orb.Point{0.003, 0}),
	}
	graph, err := BuildGraph(segments, logger)
	require.NoError(t, err)

	clinics := append([]Clinic{
		{Name: "district-clinic", Point: orb.Point{0.003, 0}, Score: 5},
	}, extraClinics...)

	router, err := NewRouter(graph, clinics, DefaultConfig(), logger)
	require.NoError(t, err)
	return router
}

func TestServiceGatesOnReadiness(t *testing.T) {
	svc := NewService()
	assert.False(t, svc.Ready())

	_, err := svc.BestRoute(context.Background(), orb.Point{0, 0}, 10, false)
	assert.ErrorIs(t, err, ErrGraphNotReady)

	svc.Activate(scenarioRouter(t))
	assert.True(t, svc.Ready())

	_, err = svc.BestRoute(context.Background(), orb.Point{0, 0}, 10, false)
	assert.NoError(t, err)
}

func TestBestRouteTierDivergence(t *testing.T) {
	router := scenarioRouter(t)
	start := orb.Point{0, 0}

	low, err := router.BestRoute(context.Background(), start, 10, false)
	require.NoError(t, err)
	assert.Equal(t, "standard", low.Kind)
	assert.InDelta(t, 334, low.DistanceM, 3, "low-risk tier takes the unpaved shortcut")

	high, err := router.BestRoute(context.Background(), start, 32, false)
	require.NoError(t, err)
	assert.Equal(t, "safety-prioritized", high.Kind)
	assert.InDelta(t, 609, high.DistanceM, 3, "high-risk tier stays on the paved detour")
	assert.InDelta(t, high.DistanceM, high.Cost, 0.01, "paved route cost equals its length")

	assert.Greater(t, high.DistanceM, low.DistanceM)
}

func TestBestRouteFlagForcesHighTier(t *testing.T) {
	router := scenarioRouter(t)

	res, err := router.BestRoute(context.Background(), orb.Point{0, 0}, 10, true)
	require.NoError(t, err)
	assert.Equal(t, "safety-prioritized", res.Kind)
	assert.Equal(t, TierHigh, res.Profile.Tier)
}

func TestBestRouteSnapLeg(t *testing.T) {
	router := scenarioRouter(t)

	// About 22 m south of node A.
	start := orb.Point{0, -0.0002}
	res, err := router.BestRoute(context.Background(), start, 10, false)
	require.NoError(t, err)

	assert.Greater(t, res.StartSnapM, 0.0)
	assert.Equal(t, start, res.Line[0], "rendered path starts at the query point")
	assert.InDelta(t, res.Route.DistanceM+res.StartSnapM, res.DistanceM, 0.01)
}

func TestBestRouteNoCoverage(t *testing.T) {
	router := scenarioRouter(t)

	_, err := router.BestRoute(context.Background(), orb.Point{10, 10}, 10, false)
	assert.ErrorIs(t, err, ErrNoCoverage)
}

func TestBestRouteUnreachableClinic(t *testing.T) {
	// The only clinic sits on an isolated road component.
	logger := zaptest.NewLogger(t).Sugar()

	segments := []RoadSegment{
		seg("asphalt", "", orb.Point{0, 0}, orb.Point{0.001, 0}),
		seg("asphalt", "", orb.Point{0.5, 0.5}, orb.Point{0.501, 0.5}),
	}
	graph, err := BuildGraph(segments, logger)
	require.NoError(t, err)
	require.Equal(t, 2, graph.ComponentCount())

	clinics := []Clinic{{Name: "island-clinic", Point: orb.Point{0.5, 0.5}, Score: 5}}
	router, err := NewRouter(graph, clinics, DefaultConfig(), logger)
	require.NoError(t, err)

	_, err = router.BestRoute(context.Background(), orb.Point{0, 0}, 10, false)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestBestRouteSkipsOffNetworkClinic(t *testing.T) {
	// A clinic with a better score but no road nearby is skipped in
	// favor of the reachable one.
	router := scenarioRouter(t, Clinic{Name: "remote-clinic", Point: orb.Point{0.05, 0.05}, Score: 10})

	res, err := router.BestRoute(context.Background(), orb.Point{0, 0}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, "district-clinic", res.Destination.Name)
}

func TestBestRouteRejectsNegativeWeek(t *testing.T) {
	router := scenarioRouter(t)

	_, err := router.BestRoute(context.Background(), orb.Point{0, 0}, -1, false)
	assert.Error(t, err)
}

func TestNewRouterValidation(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	clinics := []Clinic{{Name: "c", Point: orb.Point{0, 0}, Score: 1}}

	_, err := NewRouter(NewGraph(), clinics, DefaultConfig(), logger)
	assert.Error(t, err, "empty graph must fail construction")

	g := NewGraph()
	g.AddNode(1, 0, 0)
	g.LabelComponents()

	_, err = NewRouter(g, nil, DefaultConfig(), logger)
	assert.Error(t, err, "empty clinic set must fail construction")

	bad := DefaultConfig()
	bad.Policy.HighUnpavedFactor = 0
	_, err = NewRouter(g, clinics, bad, logger)
	assert.Error(t, err, "invalid policy must fail construction")
}

func TestPrepareResponse(t *testing.T) {
	router := scenarioRouter(t)

	res, err := router.BestRoute(context.Background(), orb.Point{0, 0}, 30, false)
	require.NoError(t, err)

	resp := PrepareResponse("req-1", res)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "safety-prioritized", resp.Kind)
	assert.True(t, resp.IsHighRisk)
	assert.Equal(t, "district-clinic", resp.Destination.Name)
	assert.InDelta(t, 1.0, resp.AvgSurfaceFactor, 0.01, "an all-paved route averages factor 1")
	require.NotNil(t, resp.Route)

	line, ok := resp.Route.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, len(res.Line), len(line))
}
