package routing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SurfaceClass is the routing-relevant surface quality of an edge.
type SurfaceClass int

const (
	SurfaceUnknown SurfaceClass = iota
	SurfacePaved
	SurfaceUnpaved
)

func (s SurfaceClass) String() string {
	switch s {
	case SurfacePaved:
		return "paved"
	case SurfaceUnpaved:
		return "unpaved"
	default:
		return "unknown"
	}
}

var (
	pavedSurfaces   = []string{"paved", "asphalt", "concrete", "bitumen"}
	unpavedSurfaces = []string{"gravel", "unpaved", "compacted", "fine_gravel", "dirt", "earth", "ground", "mud", "sand"}
)

// ClassifySurface maps OSM-style surface and highway tags onto a
// SurfaceClass. The highway type serves as a fallback for roads that
// carry no surface tag: arterial road classes are overwhelmingly paved,
// tracks and paths are not.
func ClassifySurface(surface, highway string) SurfaceClass {
	// Unpaved keywords first: "unpaved" itself contains "paved".
	surface = strings.ToLower(surface)
	for _, s := range unpavedSurfaces {
		if strings.Contains(surface, s) {
			return SurfaceUnpaved
		}
	}
	for _, s := range pavedSurfaces {
		if strings.Contains(surface, s) {
			return SurfacePaved
		}
	}

	switch strings.ToLower(highway) {
	case "motorway", "trunk", "primary", "secondary", "tertiary", "residential":
		return SurfacePaved
	case "track", "path":
		return SurfaceUnpaved
	}
	return SurfaceUnknown
}

// RiskTier classifies the traveler for routing purposes.
type RiskTier int

const (
	TierLow RiskTier = iota
	TierHigh
)

func (t RiskTier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "low"
}

// RouteKind tags a solved route for the presentation layer.
func (t RiskTier) RouteKind() string {
	if t == TierHigh {
		return "safety-prioritized"
	}
	return "standard"
}

// RiskProfile is the per-request risk classification.
type RiskProfile struct {
	Week int
	Tier RiskTier
}

// PolicyConfig holds the weighting multipliers. The exact values are
// policy, not geometry, so they load from configuration; the defaults
// keep low-risk routing close to shortest-path while making unpaved
// roads roughly an order of magnitude more expensive for high-risk
// travelers.
type PolicyConfig struct {
	// HighRiskWeek is the pregnancy week at which routing switches to
	// the high-risk tier regardless of the explicit flag.
	HighRiskWeek int `yaml:"highRiskWeek"`

	// LowUnpavedFactor and LowUnknownFactor are the minor surcharges
	// applied under the low-risk tier.
	LowUnpavedFactor float64 `yaml:"lowUnpavedFactor"`
	LowUnknownFactor float64 `yaml:"lowUnknownFactor"`

	// HighUnpavedFactor is the penalty applied to unpaved edges under
	// the high-risk tier. Unknown surfaces count as unpaved there.
	HighUnpavedFactor float64 `yaml:"highUnpavedFactor"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		HighRiskWeek:      28,
		LowUnpavedFactor:  1.2,
		LowUnknownFactor:  1.1,
		HighUnpavedFactor: 8.0,
	}
}

func (c PolicyConfig) Validate() error {
	if c.HighRiskWeek < 0 {
		return fmt.Errorf("highRiskWeek must be non-negative, got %d", c.HighRiskWeek)
	}
	for name, f := range map[string]float64{
		"lowUnpavedFactor":  c.LowUnpavedFactor,
		"lowUnknownFactor":  c.LowUnknownFactor,
		"highUnpavedFactor": c.HighUnpavedFactor,
	} {
		if f < 1 {
			return fmt.Errorf("%s must be >= 1 so costs never drop below physical length, got %f", name, f)
		}
	}
	return nil
}

// LoadPolicyConfig reads multipliers from a YAML file, filling missing
// fields from the defaults.
func LoadPolicyConfig(path string) (PolicyConfig, error) {
	cfg := DefaultPolicyConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read policy config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse policy config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ProfileFor derives the risk tier from the request inputs. High tier
// when the explicit flag is set or the pregnancy reached the configured
// week.
func (c PolicyConfig) ProfileFor(week int, highRisk bool) RiskProfile {
	tier := TierLow
	if highRisk || week >= c.HighRiskWeek {
		tier = TierHigh
	}
	return RiskProfile{Week: week, Tier: tier}
}

// Cost returns the risk-adjusted traversal cost of an edge. Pure
// function of the edge attributes and the profile; always >= Length.
func (c PolicyConfig) Cost(edge Edge, profile RiskProfile) float64 {
	factor := 1.0
	switch profile.Tier {
	case TierHigh:
		// Unknown surface is assumed unpaved: fail safe toward caution.
		if edge.Surface != SurfacePaved {
			factor = c.HighUnpavedFactor
		}
	default:
		switch edge.Surface {
		case SurfaceUnpaved:
			factor = c.LowUnpavedFactor
		case SurfaceUnknown:
			factor = c.LowUnknownFactor
		}
	}
	return edge.Length * factor
}
