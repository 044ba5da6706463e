// Package itinerary defines the trip request and itinerary data model
// shared by the planner, its transports and the CLI.
package itinerary

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a point of interest. Sequence is the 1-based order across the
// whole trip, not per day. Locations are never modified after extraction.
type Location struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description"`
	Time        string      `json:"time,omitempty"`
	Duration    string      `json:"duration,omitempty"`
	Sequence    int         `json:"sequence"`
	Category    string      `json:"category,omitempty"`

	// Timezone is an IANA zone name for display. Empty when unknown.
	Timezone string `json:"timezone,omitempty"`
}

// TransportationMode is one way to travel a Route.
type TransportationMode struct {
	Mode        string `json:"mode"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Cost        string `json:"cost,omitempty"`
}

// Route is a directed edge between two Locations held by value.
// Distance and travel time are free text and may be placeholders.
type Route struct {
	Origin              Location             `json:"origin"`
	Destination         Location             `json:"destination"`
	Distance            string               `json:"distance"`
	EstimatedTravelTime string               `json:"estimated_travel_time"`
	TransportationModes []TransportationMode `json:"transportation_modes"`
}

// Activity is a Location projected into a day schedule.
type Activity struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Duration    string      `json:"duration"`
	Description string      `json:"description"`
	Location    Coordinates `json:"location"`
	Time        string      `json:"time,omitempty"`
	Sequence    int         `json:"sequence"`
}

// Meals holds optional meal suggestions.
type Meals struct {
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

// DaySchedule is one calendar day of the trip.
type DaySchedule struct {
	Day                int        `json:"day"`
	Date               string     `json:"date"`
	Location           string     `json:"location"`
	Weather            string     `json:"weather"`
	Activities         []Activity `json:"activities"`
	Meals              Meals      `json:"meals"`
	Accommodation      string     `json:"accommodation"`
	EstimatedDailyCost float64    `json:"estimated_daily_cost"`
}

// CostBreakdown splits the total cost in USD.
type CostBreakdown struct {
	Accommodations float64 `json:"accommodations"`
	Meals          float64 `json:"meals"`
}

// TripSummary describes the trip as a whole.
type TripSummary struct {
	Duration           string        `json:"duration"`
	TotalEstimatedCost float64       `json:"total_estimated_cost"`
	CostBreakdown      CostBreakdown `json:"cost_breakdown"`
	BestTimeToVisit    string        `json:"best_time_to_visit"`
	TripType           TripType      `json:"trip_type"`
	StartDate          string        `json:"start_date,omitempty"`
	EndDate            string        `json:"end_date,omitempty"`
	Modified           bool          `json:"modified"`
}

// TripPlanResponse is the finished itinerary.
type TripPlanResponse struct {
	Destinations       []Location    `json:"destinations"`
	TripSummary        TripSummary   `json:"trip_summary"`
	Routes             []Route       `json:"routes,omitempty"`
	DailyItinerary     []DaySchedule `json:"daily_itinerary"`
	TravelTips         []string      `json:"travel_tips"`
	PackingSuggestions []string      `json:"packing_suggestions"`
}

// Result is the envelope returned to every caller. On failure Data is an
// empty object and Message carries the cause.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Succeeded wraps a finished plan.
func Succeeded(plan *TripPlanResponse) Result {
	return Result{Success: true, Data: plan, Message: "Trip plan generated successfully"}
}

// Failed wraps a pipeline error.
func Failed(err error) Result {
	return Result{Success: false, Data: map[string]any{}, Message: err.Error()}
}
