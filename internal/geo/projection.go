package geo

import (
	"errors"

	"github.com/golang/geo/s2"
)

// Mean earth radius in kilometers, matching s2's reference sphere.
const earthRadiusKm = 6371.0088

// ErrOutsideLineRange is returned when a kilometer offset does not fall
// on the line's kilometer range.
var ErrOutsideLineRange = errors.New("el kilómetro ingresado está fuera del rango de la línea seleccionada")

// PointAtKM projects a kilometer offset onto a line path and returns
// the resulting lat/lon. The path is [lon, lat] vertex pairs. When the
// line declares a kilometer range (kmInicio < kmFin), km is interpreted
// against that range and mapped proportionally onto the path's measured
// great-circle length; otherwise km is taken as distance from the
// path's start.
func PointAtKM(path [][]float64, kmInicio, kmFin *float64, km float64) (lat, lon float64, err error) {
	if len(path) < 2 || !finite(km) || km < 0 {
		return 0, 0, ErrOutsideLineRange
	}

	segs := make([]float64, len(path)-1)
	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		segs[i] = distanceKm(path[i], path[i+1])
		total += segs[i]
	}
	if total <= 0 {
		return 0, 0, ErrOutsideLineRange
	}

	target := km
	if kmInicio != nil && kmFin != nil && *kmFin > *kmInicio {
		if km < *kmInicio || km > *kmFin {
			return 0, 0, ErrOutsideLineRange
		}
		target = (km - *kmInicio) / (*kmFin - *kmInicio) * total
	}
	// Tolerate measurement slack at the far endpoint.
	if target > total {
		if target > total*1.001 {
			return 0, 0, ErrOutsideLineRange
		}
		target = total
	}

	walked := 0.0
	for i, seg := range segs {
		if walked+seg >= target || i == len(segs)-1 {
			f := 0.0
			if seg > 0 {
				f = (target - walked) / seg
			}
			a, b := path[i], path[i+1]
			lon = a[0] + (b[0]-a[0])*f
			lat = a[1] + (b[1]-a[1])*f
			return lat, lon, nil
		}
		walked += seg
	}
	return 0, 0, ErrOutsideLineRange
}

func distanceKm(a, b []float64) float64 {
	p := s2.LatLngFromDegrees(a[1], a[0])
	q := s2.LatLngFromDegrees(b[1], b[0])
	return p.Distance(q).Radians() * earthRadiusKm
}
