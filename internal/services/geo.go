package services

import (
	"math"
	"sort"

	"github.com/nomadshift/backend/internal/models"
)

const (
	kmPerDegree = 111.0
	// DefaultRadiusKm applies when a location filter has no explicit radius.
	DefaultRadiusKm = 10.0
)

// PlanarDistanceKm approximates distance by treating degrees as a flat grid.
func PlanarDistanceKm(a, b models.Location) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * kmPerDegree
}

// FilterByDistance keeps jobs within radiusKm of origin, annotates each with its
// distance and orders them nearest first.
func FilterByDistance(jobs []*models.Job, origin models.Location, radiusKm float64) []*models.Job {
	out := make([]*models.Job, 0, len(jobs))
	for _, j := range jobs {
		d := PlanarDistanceKm(j.Location, origin)
		if d > radiusKm {
			continue
		}
		rounded := round2(d)
		j.DistanceKm = &rounded
		out = append(out, j)
	}
	sort.SliceStable(out, func(i, k int) bool {
		return *out[i].DistanceKm < *out[k].DistanceKm
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
