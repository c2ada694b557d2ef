// Package geodata turns GeoJSON extracts into the records the routing
// core consumes, and persists built graphs between restarts.
package geodata

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"safe-route-server/routing"
)

// RoadSegmentsFromFeatures converts a feature collection into road
// segments. Non-line features are skipped; MultiLineStrings contribute
// one segment per part.
func RoadSegmentsFromFeatures(fc *geojson.FeatureCollection) []routing.RoadSegment {
	segments := make([]routing.RoadSegment, 0, len(fc.Features))
	for _, f := range fc.Features {
		surface := f.Properties.MustString("surface", "")
		highway := f.Properties.MustString("highway", "")

		switch geom := f.Geometry.(type) {
		case orb.LineString:
			segments = append(segments, routing.RoadSegment{Line: geom, Surface: surface, Highway: highway})
		case orb.MultiLineString:
			for _, part := range geom {
				segments = append(segments, routing.RoadSegment{Line: part, Surface: surface, Highway: highway})
			}
		}
	}
	return segments
}

// LoadRoadSegments reads road geometry from a GeoJSON file.
func LoadRoadSegments(path string, logger *zap.SugaredLogger) ([]routing.RoadSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roads file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse roads file %s: %w", path, err)
	}

	segments := RoadSegmentsFromFeatures(fc)
	logger.Infow("road segments loaded", "file", path, "features", len(fc.Features), "segments", len(segments))
	return segments, nil
}

// ClinicsFromFeatures converts a feature collection into clinics.
// Point features use their coordinate; polygons fall back to their
// centroid. The suitability score is read as-is from the properties.
func ClinicsFromFeatures(fc *geojson.FeatureCollection) []routing.Clinic {
	clinics := make([]routing.Clinic, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		var point orb.Point
		if p, ok := f.Geometry.(orb.Point); ok {
			point = p
		} else {
			point, _ = planar.CentroidArea(f.Geometry)
		}

		clinics = append(clinics, routing.Clinic{
			Name:         f.Properties.MustString("name", "Unknown"),
			Amenity:      f.Properties.MustString("amenity", ""),
			City:         f.Properties.MustString("addr_city", ""),
			Street:       f.Properties.MustString("addr_street", ""),
			Emergency:    f.Properties.MustString("emergency", ""),
			OpeningHours: f.Properties.MustString("opening_hours", ""),
			Operator:     f.Properties.MustString("operator", ""),
			Beds:         f.Properties.MustInt("beds", 0),
			Score:        f.Properties.MustFloat64("score", 0),
			Point:        point,
		})
	}
	return clinics
}

// LoadClinics reads scored clinic locations from a GeoJSON file.
func LoadClinics(path string, logger *zap.SugaredLogger) ([]routing.Clinic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clinics file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse clinics file %s: %w", path, err)
	}

	clinics := ClinicsFromFeatures(fc)
	logger.Infow("clinics loaded", "file", path, "clinics", len(clinics))
	return clinics, nil
}

// FilterBBox keeps the features whose geometry touches the given
// bounding box. Used to cut a national extract down to the served
// region before the graph build.
func FilterBBox(fc *geojson.FeatureCollection, bound orb.Bound) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if bound.Intersects(f.Geometry.Bound()) {
			out.Append(f)
		}
	}
	return out
}
