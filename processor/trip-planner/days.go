package tripplanner

import (
	"fmt"
	"sort"
	"time"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/samber/lo"
)

// Activity defaults for locations that omit them.
const (
	DefaultActivityType     = "sightseeing"
	DefaultActivityDuration = "1-2 hours"
)

// GroupDays partitions sequence-ordered locations into day schedules.
// A day trip is always one day. Longer trips bucket by
// ceil(sequence / StopsPerDay); empty buckets are skipped and the remaining
// days keep their bucket number. Dates count from the request's start date,
// or from today when the request has none.
func GroupDays(n *itinerary.NormalizedRequest, locs []itinerary.Location, policy itinerary.Policy, today time.Time) []itinerary.DaySchedule {
	if len(locs) == 0 {
		return nil
	}

	stops := policy.StopsPerDay
	if stops <= 0 {
		stops = itinerary.StopsPerDay
	}

	var buckets map[int][]itinerary.Location
	if n.TripType == itinerary.TripDayTrip {
		buckets = map[int][]itinerary.Location{1: locs}
	} else {
		buckets = lo.GroupBy(locs, func(loc itinerary.Location) int {
			return dayOf(loc.Sequence, stops)
		})
	}

	dayNumbers := lo.Keys(buckets)
	sort.Ints(dayNumbers)

	anchor := today
	if n.StartDate != nil {
		anchor = *n.StartDate
	}

	schedules := make([]itinerary.DaySchedule, 0, len(dayNumbers))
	for _, day := range dayNumbers {
		schedules = append(schedules, buildDay(n, day, anchor, buckets[day], policy))
	}
	return schedules
}

// dayOf is ceil(sequence / stops) for positive sequences.
func dayOf(sequence, stops int) int {
	return (sequence + stops - 1) / stops
}

func buildDay(n *itinerary.NormalizedRequest, day int, anchor time.Time, locs []itinerary.Location, policy itinerary.Policy) itinerary.DaySchedule {
	accommodation := "Hotel in " + n.Destination
	if n.TripType == itinerary.TripDayTrip {
		accommodation = "Not required (day trip)"
	}

	return itinerary.DaySchedule{
		Day:                day,
		Date:               anchor.AddDate(0, 0, day-1).Format(itinerary.DateLayout),
		Location:           n.Destination,
		Weather:            itinerary.DefaultWeather,
		Activities:         lo.Map(locs, func(loc itinerary.Location, _ int) itinerary.Activity { return toActivity(loc) }),
		Meals:              placeholderMeals(n.Destination, locs),
		Accommodation:      accommodation,
		EstimatedDailyCost: policy.DailyCost(),
	}
}

func toActivity(loc itinerary.Location) itinerary.Activity {
	act := itinerary.Activity{
		Name:        loc.Name,
		Type:        loc.Category,
		Duration:    loc.Duration,
		Description: loc.Description,
		Location:    loc.Coordinates,
		Time:        loc.Time,
		Sequence:    loc.Sequence,
	}
	if act.Type == "" {
		act.Type = DefaultActivityType
	}
	if act.Duration == "" {
		act.Duration = DefaultActivityDuration
	}
	return act
}

func placeholderMeals(destination string, locs []itinerary.Location) itinerary.Meals {
	meals := itinerary.Meals{
		Breakfast: "Breakfast at a local café",
		Lunch:     fmt.Sprintf("Lunch near %s", locs[0].Name),
		Dinner:    fmt.Sprintf("Dinner featuring local cuisine in %s", destination),
	}
	if len(locs) > 1 {
		meals.Lunch = fmt.Sprintf("Lunch near %s", locs[len(locs)/2].Name)
	}
	return meals
}
