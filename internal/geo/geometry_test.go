package geo

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseGeometry_WKTPoint(t *testing.T) {
	g := ParseGeometry("POINT(-104.65 24.02)")
	if g == nil {
		t.Fatal("expected geometry, got nil")
	}
	if g.Type != TypePoint {
		t.Fatalf("expected Point, got %s", g.Type)
	}
	if g.Point[0] != -104.65 || g.Point[1] != 24.02 {
		t.Errorf("expected [-104.65 24.02] (lon, lat), got %v", g.Point)
	}
}

func TestParseGeometry_WKTPointCaseAndSpacing(t *testing.T) {
	for _, s := range []string{
		"point(-104.65 24.02)",
		"POINT ( -104.65   24.02 )",
		"Point(-104.65 24.02)",
	} {
		if g := ParseGeometry(s); g == nil || g.Type != TypePoint {
			t.Errorf("expected point for %q, got %v", s, g)
		}
	}
}

func TestParseGeometry_WKTLineString(t *testing.T) {
	g := ParseGeometry("LINESTRING(-104.6 24.0, -104.5 24.1, -104.4 24.2)")
	if g == nil || g.Type != TypeLineString {
		t.Fatalf("expected LineString, got %v", g)
	}
	if len(g.Path) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(g.Path))
	}
	if g.Path[1][0] != -104.5 || g.Path[1][1] != 24.1 {
		t.Errorf("unexpected vertex: %v", g.Path[1])
	}
}

func TestParseGeometry_LineStringDropsBadPairs(t *testing.T) {
	g := ParseGeometry("LINESTRING(-104.6 24.0, abc def, -104.4 24.2)")
	if g == nil || len(g.Path) != 2 {
		t.Fatalf("expected 2 surviving vertices, got %v", g)
	}

	// Only one valid pair left: not a line.
	if g := ParseGeometry("LINESTRING(-104.6 24.0, abc def)"); g != nil {
		t.Errorf("expected nil for single-vertex result, got %v", g)
	}
}

func TestParseGeometry_SerializedGeoJSON(t *testing.T) {
	g := ParseGeometry(`{"type":"Point","coordinates":[-104.65,24.02]}`)
	if g == nil || g.Type != TypePoint || g.Point[0] != -104.65 {
		t.Fatalf("expected point from serialized GeoJSON, got %v", g)
	}

	g = ParseGeometry(`{"type":"LineString","coordinates":[[-104.6,24.0],[-104.5,24.1]]}`)
	if g == nil || g.Type != TypeLineString || len(g.Path) != 2 {
		t.Fatalf("expected linestring from serialized GeoJSON, got %v", g)
	}
}

func TestParseGeometry_CanonicalPassthrough(t *testing.T) {
	in := &Geometry{Type: TypePoint, Point: []float64{-104.65, 24.02}}
	if got := ParseGeometry(in); got != in {
		t.Errorf("canonical geometry should be returned as-is")
	}
}

func TestParseGeometry_DecodedObject(t *testing.T) {
	m := map[string]any{"type": "Point", "coordinates": []any{-104.65, 24.02}}
	g := ParseGeometry(m)
	if g == nil || g.Type != TypePoint || g.Point[1] != 24.02 {
		t.Fatalf("expected point from decoded object, got %v", g)
	}
}

func TestParseGeometry_MalformedReturnsNil(t *testing.T) {
	cases := []any{
		nil,
		"",
		"garbage",
		"POINT()",
		"POINT(abc def)",
		"POINT(-104.65)",
		"LINESTRING()",
		"LINESTRING(1 2)",
		`{"type":"Polygon","coordinates":[]}`,
		`{"type":"Point"}`,
		"{not json",
		42,
		[]string{"POINT(1 2)"},
		&Geometry{Type: TypePoint},
		Geometry{Type: TypeLineString, Path: [][]float64{{1, 2}}},
	}
	for _, c := range cases {
		if g := ParseGeometry(c); g != nil {
			t.Errorf("expected nil for %#v, got %v", c, g)
		}
	}
}

func TestGeometry_JSONRoundTrip(t *testing.T) {
	in := Geometry{Type: TypeLineString, Path: [][]float64{{-104.6, 24.0}, {-104.5, 24.1}}}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out Geometry
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Type != TypeLineString || len(out.Path) != 2 || out.Path[0][0] != -104.6 {
		t.Errorf("round trip mismatch: %v", out)
	}
}

func TestValidLatLon(t *testing.T) {
	valid := [][2]float64{
		{24.02, -104.65},
		{0, 0},
		{-90, -180},
		{90, 180},
	}
	for _, c := range valid {
		if !ValidLatLon(c[0], c[1]) {
			t.Errorf("expected valid for lat=%v lon=%v", c[0], c[1])
		}
	}

	invalid := [][2]float64{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
	}
	for _, c := range invalid {
		if ValidLatLon(c[0], c[1]) {
			t.Errorf("expected invalid for lat=%v lon=%v", c[0], c[1])
		}
	}
}

func TestPointWKT_RoundTrip(t *testing.T) {
	wkt := PointWKT(-104.65, 24.02)
	if wkt != "POINT(-104.65 24.02)" {
		t.Fatalf("unexpected wkt: %s", wkt)
	}
	g := ParseGeometry(wkt)
	if g == nil || g.Point[0] != -104.65 || g.Point[1] != 24.02 {
		t.Errorf("round trip failed: %v", g)
	}
}

func TestLineStringWKT(t *testing.T) {
	wkt := LineStringWKT([][]float64{{-104.6, 24.0}, {-104.5, 24.1}})
	if wkt != "LINESTRING(-104.6 24, -104.5 24.1)" {
		t.Fatalf("unexpected wkt: %s", wkt)
	}
	if g := ParseGeometry(wkt); g == nil || len(g.Path) != 2 {
		t.Errorf("round trip failed: %v", g)
	}
}
