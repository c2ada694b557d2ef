package routing

import "errors"

// Error values surfaced by the routing core. Handlers match them with
// errors.Is to pick a status code.
var (
	// ErrMalformedGeometry marks a road segment that cannot be turned into
	// graph edges. It is recovered inside the graph builder (the segment is
	// skipped) and never aborts a build.
	ErrMalformedGeometry = errors.New("malformed road geometry")

	// ErrNoCoverage means a query point is farther than the configured snap
	// distance from every graph node.
	ErrNoCoverage = errors.New("no graph coverage near point")

	// ErrNoPath means start and destination are not connected.
	ErrNoPath = errors.New("no path between start and destination")

	// ErrRouteTimeout means the search exceeded the request deadline.
	ErrRouteTimeout = errors.New("route search timed out")

	// ErrGraphNotReady means a request arrived before the initial graph
	// build finished.
	ErrGraphNotReady = errors.New("road graph not ready")
)
