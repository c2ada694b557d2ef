package routing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileFor(t *testing.T) {
	cfg := DefaultPolicyConfig()

	cases := []struct {
		name     string
		week     int
		highRisk bool
		want     RiskTier
	}{
		{"early pregnancy", 10, false, TierLow},
		{"week before threshold", 27, false, TierLow},
		{"threshold week", 28, false, TierHigh},
		{"late pregnancy", 36, false, TierHigh},
		{"explicit flag overrides week", 5, true, TierHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cfg.ProfileFor(tc.week, tc.highRisk)
			if got.Tier != tc.want {
				t.Errorf("ProfileFor(%d, %v) = %v, want %v", tc.week, tc.highRisk, got.Tier, tc.want)
			}
		})
	}
}

func TestClassifySurface(t *testing.T) {
	cases := []struct {
		surface string
		highway string
		want    SurfaceClass
	}{
		{"asphalt", "", SurfacePaved},
		{"Concrete", "", SurfacePaved},
		{"paved;asphalt", "", SurfacePaved},
		{"gravel", "", SurfaceUnpaved},
		{"unpaved", "", SurfaceUnpaved},
		{"fine_gravel", "", SurfaceUnpaved},
		{"dirt", "primary", SurfaceUnpaved}, // surface tag beats highway fallback
		{"", "primary", SurfacePaved},
		{"", "residential", SurfacePaved},
		{"", "track", SurfaceUnpaved},
		{"", "path", SurfaceUnpaved},
		{"", "", SurfaceUnknown},
		{"cobblestone", "footway", SurfaceUnknown},
	}

	for _, tc := range cases {
		if got := ClassifySurface(tc.surface, tc.highway); got != tc.want {
			t.Errorf("ClassifySurface(%q, %q) = %v, want %v", tc.surface, tc.highway, got, tc.want)
		}
	}
}

func TestCostRespectsTierOrdering(t *testing.T) {
	cfg := DefaultPolicyConfig()
	low := cfg.ProfileFor(10, false)
	high := cfg.ProfileFor(10, true)

	for _, surface := range []SurfaceClass{SurfacePaved, SurfaceUnpaved, SurfaceUnknown} {
		edge := Edge{FromID: 1, ToID: 2, Length: 100, Surface: surface}

		lowCost := cfg.Cost(edge, low)
		highCost := cfg.Cost(edge, high)

		if lowCost < edge.Length || highCost < edge.Length {
			t.Errorf("%v: cost below physical length (low %.1f, high %.1f)", surface, lowCost, highCost)
		}
		if highCost < lowCost {
			t.Errorf("%v: high-risk cost %.1f below low-risk cost %.1f", surface, highCost, lowCost)
		}

		if surface == SurfacePaved {
			if lowCost != edge.Length || highCost != edge.Length {
				t.Errorf("paved edges must stay at base cost, got low %.1f high %.1f", lowCost, highCost)
			}
		}
	}

	// Unknown surfaces count as unpaved for high-risk travelers.
	unknown := Edge{Length: 100, Surface: SurfaceUnknown}
	unpaved := Edge{Length: 100, Surface: SurfaceUnpaved}
	if cfg.Cost(unknown, high) != cfg.Cost(unpaved, high) {
		t.Errorf("high tier: unknown surface cost %.1f != unpaved cost %.1f",
			cfg.Cost(unknown, high), cfg.Cost(unpaved, high))
	}
}

func TestCostIsDeterministic(t *testing.T) {
	cfg := DefaultPolicyConfig()
	profile := cfg.ProfileFor(30, false)
	edge := Edge{Length: 123.456, Surface: SurfaceUnpaved}

	first := cfg.Cost(edge, profile)
	for i := 0; i < 10; i++ {
		if got := cfg.Cost(edge, profile); got != first {
			t.Fatalf("cost changed between calls: %f != %f", got, first)
		}
	}
}

func TestPolicyConfigValidate(t *testing.T) {
	cfg := DefaultPolicyConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got: %v", err)
	}

	bad := cfg
	bad.HighUnpavedFactor = 0.5
	if err := bad.Validate(); err == nil {
		t.Error("expected error for multiplier below 1")
	}

	bad = cfg
	bad.HighRiskWeek = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative week threshold")
	}
}

func TestLoadPolicyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "highUnpavedFactor: 12.5\nlowUnpavedFactor: 1.3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPolicyConfig(path)
	if err != nil {
		t.Fatalf("LoadPolicyConfig returned error: %v", err)
	}
	if cfg.HighUnpavedFactor != 12.5 {
		t.Errorf("expected highUnpavedFactor 12.5, got %f", cfg.HighUnpavedFactor)
	}
	if cfg.LowUnpavedFactor != 1.3 {
		t.Errorf("expected lowUnpavedFactor 1.3, got %f", cfg.LowUnpavedFactor)
	}
	// Unset fields keep their defaults.
	if cfg.HighRiskWeek != DefaultPolicyConfig().HighRiskWeek {
		t.Errorf("expected default highRiskWeek, got %d", cfg.HighRiskWeek)
	}

	if _, err := LoadPolicyConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badPath, []byte("highUnpavedFactor: 0.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicyConfig(badPath); err == nil {
		t.Error("expected validation error for factor below 1")
	}
}
