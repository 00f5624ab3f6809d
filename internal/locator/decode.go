package locator

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/linergy/subtrans-ops/internal/geo"
)

// The accepted wire shapes, in precedence order:
//
//  1. flat or nested numeric fields: {lat,lon}, {lat,lng},
//     {latitude,longitude}, each also under "data" or "location"
//  2. a WKT point string under geom, wkt or geom_wkt
//  3. a GeoJSON point under geom or geometry
//
// The first shape that yields two finite coordinates wins; lat and lon
// candidates resolve independently within shape 1.
var decoders = []func(payload map[string]json.RawMessage) (Location, bool){
	decodeNumericFields,
	decodeWKT,
	decodeGeoJSON,
}

var (
	latPaths = [][]string{
		{"lat"}, {"latitude"},
		{"data", "lat"}, {"data", "latitude"},
		{"location", "lat"}, {"location", "latitude"},
	}
	lonPaths = [][]string{
		{"lon"}, {"lng"}, {"longitude"},
		{"data", "lon"}, {"data", "lng"}, {"data", "longitude"},
		{"location", "lon"}, {"location", "lng"}, {"location", "longitude"},
	}
)

// Decode runs the decoder chain over a raw response body.
func Decode(raw []byte) (Location, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Location{}, false
	}
	for _, d := range decoders {
		if loc, ok := d(payload); ok {
			return loc, true
		}
	}
	return Location{}, false
}

func decodeNumericFields(payload map[string]json.RawMessage) (Location, bool) {
	lat, okLat := pickNumber(payload, latPaths)
	lon, okLon := pickNumber(payload, lonPaths)
	if okLat && okLon {
		return Location{Lat: lat, Lon: lon}, true
	}
	return Location{}, false
}

func decodeWKT(payload map[string]json.RawMessage) (Location, bool) {
	for _, key := range []string{"geom", "wkt", "geom_wkt"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		g := geo.ParseGeometry(s)
		if g != nil && g.Type == geo.TypePoint {
			return Location{Lat: g.Point[1], Lon: g.Point[0]}, true
		}
	}
	return Location{}, false
}

func decodeGeoJSON(payload map[string]json.RawMessage) (Location, bool) {
	for _, key := range []string{"geom", "geometry"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		g := geo.ParseGeometry(string(raw))
		if g != nil && g.Type == geo.TypePoint {
			return Location{Lat: g.Point[1], Lon: g.Point[0]}, true
		}
	}
	return Location{}, false
}

// pickNumber returns the first finite number found across the candidate
// paths. Quoted numeric strings are tolerated.
func pickNumber(payload map[string]json.RawMessage, paths [][]string) (float64, bool) {
	for _, path := range paths {
		raw, ok := lookup(payload, path)
		if !ok {
			continue
		}
		if n, ok := asNumber(raw); ok {
			return n, true
		}
	}
	return 0, false
}

func lookup(payload map[string]json.RawMessage, path []string) (json.RawMessage, bool) {
	cur := payload
	for i, key := range path {
		raw, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		next := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func asNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, !math.IsNaN(n) && !math.IsInf(n, 0)
		}
	}
	return 0, false
}
