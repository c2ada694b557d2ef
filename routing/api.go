package routing

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// RouteRequest carries the query parameters of /api/route.
type RouteRequest struct {
	Lat  float64 `form:"lat"`
	Lon  float64 `form:"lon"`
	Week int     `form:"week"`
	Risk string  `form:"risk"` // "low" or "high"
}

// HighRisk reports whether the explicit risk flag is set.
func (r RouteRequest) HighRisk() bool {
	return strings.EqualFold(r.Risk, "high")
}

// ClinicInfo is the destination metadata block of a route response.
type ClinicInfo struct {
	Name         string  `json:"name"`
	Amenity      string  `json:"amenity,omitempty"`
	City         string  `json:"addrCity,omitempty"`
	Street       string  `json:"addrStreet,omitempty"`
	Emergency    string  `json:"emergency,omitempty"`
	OpeningHours string  `json:"openingHours,omitempty"`
	Operator     string  `json:"operator,omitempty"`
	Beds         int     `json:"beds,omitempty"`
	Score        float64 `json:"score"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

// RouteResponse is the JSON answer for a solved route. The geometry is
// a GeoJSON feature so the map client can render it directly; Kind
// tells the client which color convention applies.
type RouteResponse struct {
	RequestID        string           `json:"requestId"`
	Route            *geojson.Feature `json:"route"`
	DistanceMeters   float64          `json:"distanceMeters"`
	Cost             float64          `json:"cost"`
	Kind             string           `json:"kind"`
	IsHighRisk       bool             `json:"isHighRisk"`
	AvgSurfaceFactor float64          `json:"avgSurfaceFactor"`
	StartSnapMeters  float64          `json:"startSnapMeters"`
	Destination      ClinicInfo       `json:"destination"`
}

// PrepareResponse flattens a RouteResult into the wire shape.
func PrepareResponse(requestID string, res *RouteResult) RouteResponse {
	feature := geojson.NewFeature(res.Line)
	feature.Properties = geojson.Properties{"kind": res.Kind}

	avg := 1.0
	if res.DistanceM > 0 {
		avg = res.Cost / res.DistanceM
	}

	return RouteResponse{
		RequestID:        requestID,
		Route:            feature,
		DistanceMeters:   res.DistanceM,
		Cost:             res.Cost,
		Kind:             res.Kind,
		IsHighRisk:       res.Profile.Tier == TierHigh,
		AvgSurfaceFactor: avg,
		StartSnapMeters:  res.StartSnapM,
		Destination: ClinicInfo{
			Name:         res.Destination.Name,
			Amenity:      res.Destination.Amenity,
			City:         res.Destination.City,
			Street:       res.Destination.Street,
			Emergency:    res.Destination.Emergency,
			OpeningHours: res.Destination.OpeningHours,
			Operator:     res.Destination.Operator,
			Beds:         res.Destination.Beds,
			Score:        res.Destination.Score,
			Lat:          res.Destination.Point.Lat(),
			Lon:          res.Destination.Point.Lon(),
		},
	}
}
