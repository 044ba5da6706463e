package tripplanner

import (
	"math"

	"github.com/c360studio/tripplanner/itinerary"
)

// CoordinateIndex resolves a coordinate pair to a known Location when both
// axes differ by less than the tolerance. A linear scan is enough for the
// few dozen stops a trip has.
type CoordinateIndex struct {
	tolerance float64
	locations []itinerary.Location
}

// NewCoordinateIndex indexes locs. A non-positive tolerance uses itinerary.CoordinateTolerance.
func NewCoordinateIndex(locs []itinerary.Location, tolerance float64) *CoordinateIndex {
	if tolerance <= 0 {
		tolerance = itinerary.CoordinateTolerance
	}
	return &CoordinateIndex{tolerance: tolerance, locations: locs}
}

// Match returns the closest Location within tolerance on both axes.
func (ix *CoordinateIndex) Match(c itinerary.Coordinates) (itinerary.Location, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, loc := range ix.locations {
		dLat := math.Abs(loc.Coordinates.Latitude - c.Latitude)
		dLng := math.Abs(loc.Coordinates.Longitude - c.Longitude)
		if dLat >= ix.tolerance || dLng >= ix.tolerance {
			continue
		}
		if d := math.Max(dLat, dLng); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return itinerary.Location{}, false
	}
	return ix.locations[best], true
}
