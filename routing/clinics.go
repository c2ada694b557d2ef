package routing

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Clinic is a scored destination. The suitability score is external
// input (precomputed by whoever curates the clinic dataset); the core
// only uses it to rank candidates.
type Clinic struct {
	Name         string
	Amenity      string
	City         string
	Street       string
	Emergency    string
	OpeningHours string
	Operator     string
	Beds         int
	Score        float64
	Point        orb.Point
}

// SelectorConfig bounds how many clinics get a full route computation
// per request.
type SelectorConfig struct {
	// NearestLimit clinics by straight-line distance pass the prefilter.
	NearestLimit int
	// MaxCandidates of those, ranked by suitability score, are routed.
	MaxCandidates int
}

func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{NearestLimit: 8, MaxCandidates: 5}
}

// SelectCandidates picks the clinics worth a full route computation:
// straight-line distance prefilter first, then suitability score.
// Deterministic: ties break on distance, then name.
func SelectCandidates(start orb.Point, clinics []Clinic, cfg SelectorConfig) []Clinic {
	type ranked struct {
		clinic Clinic
		dist   float64
	}

	candidates := make([]ranked, 0, len(clinics))
	for _, c := range clinics {
		candidates = append(candidates, ranked{clinic: c, dist: geo.DistanceHaversine(start, c.Point)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].clinic.Name < candidates[j].clinic.Name
	})
	if cfg.NearestLimit > 0 && len(candidates) > cfg.NearestLimit {
		candidates = candidates[:cfg.NearestLimit]
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].clinic.Score != candidates[j].clinic.Score {
			return candidates[i].clinic.Score > candidates[j].clinic.Score
		}
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].clinic.Name < candidates[j].clinic.Name
	})
	if cfg.MaxCandidates > 0 && len(candidates) > cfg.MaxCandidates {
		candidates = candidates[:cfg.MaxCandidates]
	}

	picked := make([]Clinic, 0, len(candidates))
	for _, c := range candidates {
		picked = append(picked, c.clinic)
	}
	return picked
}
