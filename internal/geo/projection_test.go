package geo

import (
	"errors"
	"math"
	"testing"
)

// Roughly 1 degree of longitude at 24°N, about 101 km.
var testPath = [][]float64{
	{-105.0, 24.0},
	{-104.5, 24.0},
	{-104.0, 24.0},
}

func f64(v float64) *float64 { return &v }

func TestPointAtKM_Endpoints(t *testing.T) {
	lat, lon, err := PointAtKM(testPath, f64(0), f64(100), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lat-24.0) > 1e-9 || math.Abs(lon-(-105.0)) > 1e-9 {
		t.Errorf("expected path start, got lat=%v lon=%v", lat, lon)
	}

	lat, lon, err = PointAtKM(testPath, f64(0), f64(100), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lat-24.0) > 1e-9 || math.Abs(lon-(-104.0)) > 1e-9 {
		t.Errorf("expected path end, got lat=%v lon=%v", lat, lon)
	}
}

func TestPointAtKM_Midpoint(t *testing.T) {
	lat, lon, err := PointAtKM(testPath, f64(0), f64(100), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lat-24.0) > 1e-6 || math.Abs(lon-(-104.5)) > 1e-6 {
		t.Errorf("expected midpoint near (-104.5, 24.0), got lat=%v lon=%v", lat, lon)
	}
}

func TestPointAtKM_RangeOffset(t *testing.T) {
	// Line measured from km 10 to km 30: km 20 is halfway.
	lat, lon, err := PointAtKM(testPath, f64(10), f64(30), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lon-(-104.5)) > 1e-6 {
		t.Errorf("expected halfway lon -104.5, got %v (lat=%v)", lon, lat)
	}
}

func TestPointAtKM_OutsideRange(t *testing.T) {
	cases := []float64{9.9, 30.1, -1}
	for _, km := range cases {
		if _, _, err := PointAtKM(testPath, f64(10), f64(30), km); !errors.Is(err, ErrOutsideLineRange) {
			t.Errorf("expected ErrOutsideLineRange for km=%v, got %v", km, err)
		}
	}
}

func TestPointAtKM_AbsoluteWhenNoRange(t *testing.T) {
	// Without a declared range, km is distance from the path start.
	lat, lon, err := PointAtKM(testPath, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lon-(-105.0)) > 1e-9 || math.Abs(lat-24.0) > 1e-9 {
		t.Errorf("expected path start, got lat=%v lon=%v", lat, lon)
	}

	if _, _, err := PointAtKM(testPath, nil, nil, 5000); !errors.Is(err, ErrOutsideLineRange) {
		t.Errorf("expected out of range far beyond path length, got %v", err)
	}
}

func TestPointAtKM_DegeneratePath(t *testing.T) {
	if _, _, err := PointAtKM(nil, nil, nil, 1); err == nil {
		t.Error("expected error for empty path")
	}
	if _, _, err := PointAtKM([][]float64{{-104, 24}}, nil, nil, 1); err == nil {
		t.Error("expected error for single-vertex path")
	}
	same := [][]float64{{-104, 24}, {-104, 24}}
	if _, _, err := PointAtKM(same, nil, nil, 0); err == nil {
		t.Error("expected error for zero-length path")
	}
}
