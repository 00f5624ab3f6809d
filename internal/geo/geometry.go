package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Geometry is the canonical in-memory geometry: a Point carries
// [lon, lat] in Point, a LineString carries its vertices in Path.
type Geometry struct {
	Type  string
	Point []float64
	Path  [][]float64
}

const (
	TypePoint      = "Point"
	TypeLineString = "LineString"
)

var (
	pointWKTRe = regexp.MustCompile(`(?i)POINT\s*\(\s*([-\d.]+)\s+([-\d.]+)\s*\)`)
	lineWKTRe  = regexp.MustCompile(`(?i)LINESTRING\s*\((.+)\)`)
)

func (g *Geometry) valid() bool {
	if g == nil {
		return false
	}
	switch g.Type {
	case TypePoint:
		return len(g.Point) >= 2 && finite(g.Point[0]) && finite(g.Point[1])
	case TypeLineString:
		if len(g.Path) < 2 {
			return false
		}
		for _, p := range g.Path {
			if len(p) < 2 || !finite(p[0]) || !finite(p[1]) {
				return false
			}
		}
		return true
	}
	return false
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case TypePoint:
		return json.Marshal(struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		}{g.Type, g.Point})
	case TypeLineString:
		return json.Marshal(struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		}{g.Type, g.Path})
	}
	return nil, fmt.Errorf("unknown geometry type %q", g.Type)
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Type = raw.Type
	g.Point = nil
	g.Path = nil
	switch raw.Type {
	case TypePoint:
		return json.Unmarshal(raw.Coordinates, &g.Point)
	case TypeLineString:
		return json.Unmarshal(raw.Coordinates, &g.Path)
	}
	return fmt.Errorf("unknown geometry type %q", raw.Type)
}

// ParseGeometry converts whatever geometry representation a row or
// payload carries into the canonical form: nil, an already-canonical
// *Geometry, a JSON-serialized geometry, or WKT POINT / LINESTRING
// text. Unparseable input degrades to nil; it never panics. Malformed
// coordinates are dropped, never coerced to (0,0).
func ParseGeometry(v any) *Geometry {
	switch g := v.(type) {
	case nil:
		return nil
	case *Geometry:
		if g.valid() {
			return g
		}
		return nil
	case Geometry:
		if g.valid() {
			return &g
		}
		return nil
	case []byte:
		return parseGeometryString(string(g))
	case string:
		return parseGeometryString(g)
	case map[string]any:
		// Already-decoded JSON object (e.g. out of a generic payload).
		raw, err := json.Marshal(g)
		if err != nil {
			return nil
		}
		return parseGeometryString(string(raw))
	}
	return nil
}

func parseGeometryString(s string) *Geometry {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var g Geometry
	if err := json.Unmarshal([]byte(s), &g); err == nil && g.valid() {
		return &g
	}

	upper := strings.ToUpper(s)

	if strings.HasPrefix(upper, "POINT") {
		if m := pointWKTRe.FindStringSubmatch(s); m != nil {
			lon, errLon := strconv.ParseFloat(m[1], 64)
			lat, errLat := strconv.ParseFloat(m[2], 64)
			if errLon == nil && errLat == nil && finite(lon) && finite(lat) {
				return &Geometry{Type: TypePoint, Point: []float64{lon, lat}}
			}
		}
	}

	if strings.HasPrefix(upper, "LINESTRING") {
		if m := lineWKTRe.FindStringSubmatch(s); m != nil {
			var path [][]float64
			for _, pair := range strings.Split(m[1], ",") {
				fields := strings.Fields(strings.TrimSpace(pair))
				if len(fields) < 2 {
					continue
				}
				lon, errLon := strconv.ParseFloat(fields[0], 64)
				lat, errLat := strconv.ParseFloat(fields[1], 64)
				if errLon != nil || errLat != nil || !finite(lon) || !finite(lat) {
					continue
				}
				path = append(path, []float64{lon, lat})
			}
			if len(path) >= 2 {
				return &Geometry{Type: TypeLineString, Path: path}
			}
		}
	}

	return nil
}

// ValidLatLon gates every map-centering action, external maps link and
// report coordinate display. Callers must treat a false result as "no
// location": disable the action, show "No disponible", never fall back
// to (0,0).
func ValidLatLon(lat, lon float64) bool {
	return finite(lat) && finite(lon) &&
		lat >= -90 && lat <= 90 &&
		lon >= -180 && lon <= 180
}

// PointWKT formats a point in WKT order, lon then lat.
func PointWKT(lon, lat float64) string {
	return fmt.Sprintf("POINT(%s %s)", formatCoord(lon), formatCoord(lat))
}

// LineStringWKT formats a path of [lon, lat] vertices.
func LineStringWKT(path [][]float64) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if len(p) < 2 {
			continue
		}
		parts = append(parts, formatCoord(p[0])+" "+formatCoord(p[1]))
	}
	return "LINESTRING(" + strings.Join(parts, ", ") + ")"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
