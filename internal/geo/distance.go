// Package geo computes great-circle distances and distance orderings for
// location-aware search. It is pure: no storage, no pagination.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371

type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between two points in
// kilometers, via the haversine formula.
func Distance(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Ranked pairs a candidate's position in the input slice with its computed
// distance from the origin. Distance is nil when the candidate had no
// coordinates.
type Ranked struct {
	Index    int
	Distance *float64
}

// RankByProximity orders candidates by distance from origin, nearest first.
// candidates[i] == nil marks an unknown location; unknown candidates sort
// after every known one. The sort is stable, so ties and unknowns keep
// their input order. Callers paginate over the returned ranking.
func RankByProximity(origin Point, candidates []*Point) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, p := range candidates {
		ranked[i] = Ranked{Index: i}
		if p != nil {
			d := Distance(origin, *p)
			ranked[i].Distance = &d
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Distance, ranked[j].Distance
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return ranked
}
