// roadprep cuts a national road extract down to the served region so
// the server's one-time graph build stays fast.
//
// Usage: roadprep -in roads.geojson -out roads_subset.geojson \
//	[-minlon 84.0 -minlat 26.8 -maxlon 86.6 -maxlat 28.5]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"safe-route-server/geodata"
)

func main() {
	in := flag.String("in", "", "input GeoJSON file")
	out := flag.String("out", "", "output GeoJSON file")
	// Defaults cover the Bagmati/Kathmandu region.
	minLon := flag.Float64("minlon", 84.0, "bbox min longitude")
	minLat := flag.Float64("minlat", 26.8, "bbox min latitude")
	maxLon := flag.Float64("maxlon", 86.6, "bbox max longitude")
	maxLat := flag.Float64("maxlat", 28.5, "bbox max latitude")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "roadprep: -in and -out are required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roadprep: %v\n", err)
		os.Exit(1)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roadprep: parse %s: %v\n", *in, err)
		os.Exit(1)
	}

	bound := orb.Bound{
		Min: orb.Point{*minLon, *minLat},
		Max: orb.Point{*maxLon, *maxLat},
	}
	subset := geodata.FilterBBox(fc, bound)

	encoded, err := json.Marshal(subset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roadprep: encode: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "roadprep: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Kept %d of %d features, wrote %s\n", len(subset.Features), len(fc.Features), *out)
}
