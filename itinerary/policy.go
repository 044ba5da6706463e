package itinerary

// Planning policy. These are fixed heuristics, not computed values.
const (
	// StopsPerDay buckets locations into days by ceil(sequence / StopsPerDay).
	StopsPerDay = 6

	// AccommodationPerDay is the placeholder nightly cost in USD.
	AccommodationPerDay = 100.0

	// MealsPerDay is the placeholder daily food cost in USD.
	MealsPerDay = 50.0

	// CoordinateTolerance is the per-axis distance in degrees under which a
	// line endpoint matches a location.
	CoordinateTolerance = 0.001

	// Synthesized route defaults.
	SynthesizedTransport  = "walking"
	SynthesizedTravelTime = "10 minutes"
	SynthesizedDistance   = "1 km"

	// DefaultWeather is shown in place of a forecast.
	DefaultWeather = "Check local forecast"
)

// Policy carries the tunable planning constants.
type Policy struct {
	StopsPerDay         int     `json:"stops_per_day"`
	AccommodationPerDay float64 `json:"accommodation_per_day"`
	MealsPerDay         float64 `json:"meals_per_day"`
	CoordinateTolerance float64 `json:"coordinate_tolerance"`
}

// DefaultPolicy returns the standard constants.
func DefaultPolicy() Policy {
	return Policy{
		StopsPerDay:         StopsPerDay,
		AccommodationPerDay: AccommodationPerDay,
		MealsPerDay:         MealsPerDay,
		CoordinateTolerance: CoordinateTolerance,
	}
}

// Override returns p with every non-zero field of o applied.
func (p Policy) Override(o Policy) Policy {
	if o.StopsPerDay > 0 {
		p.StopsPerDay = o.StopsPerDay
	}
	if o.AccommodationPerDay > 0 {
		p.AccommodationPerDay = o.AccommodationPerDay
	}
	if o.MealsPerDay > 0 {
		p.MealsPerDay = o.MealsPerDay
	}
	if o.CoordinateTolerance > 0 {
		p.CoordinateTolerance = o.CoordinateTolerance
	}
	return p
}

// DailyCost is the placeholder cost of one day, the same for every trip type.
func (p Policy) DailyCost() float64 {
	return p.AccommodationPerDay + p.MealsPerDay
}
