package tripplanner

import (
	"fmt"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/samber/lo"
)

var baseTravelTips = []string{
	"Book popular attractions in advance to skip the queues",
	"Carry a reusable water bottle",
	"Check opening hours before you go; many sites close one day a week",
	"Keep a digital copy of your travel documents",
	"Learn a few phrases in the local language",
}

var basePackingList = []string{
	"Comfortable walking shoes",
	"Weather-appropriate clothing",
	"Phone charger and power adapter",
	"Travel documents and ID",
	"Reusable water bottle",
}

// Assemble builds the final response from the pipeline's outputs.
// Costs are summed from the day schedules, so a trip whose last buckets
// were empty is not charged for them.
func Assemble(n *itinerary.NormalizedRequest, locs []itinerary.Location, routes []itinerary.Route,
	days []itinerary.DaySchedule, policy itinerary.Policy) *itinerary.TripPlanResponse {
	dayCount := float64(len(days))

	breakdown := itinerary.CostBreakdown{
		Accommodations: dayCount * policy.AccommodationPerDay,
		Meals:          dayCount * policy.MealsPerDay,
	}

	summary := itinerary.TripSummary{
		Duration:           durationLabel(n.DurationDays),
		TotalEstimatedCost: lo.SumBy(days, func(d itinerary.DaySchedule) float64 { return d.EstimatedDailyCost }),
		CostBreakdown:      breakdown,
		BestTimeToVisit:    bestTimeToVisit(n),
		TripType:           n.TripType,
		Modified:           n.Modifying(),
	}
	if n.StartDate != nil {
		summary.StartDate = n.StartDate.Format(itinerary.DateLayout)
	}
	if n.EndDate != nil {
		summary.EndDate = n.EndDate.Format(itinerary.DateLayout)
	}

	if locs == nil {
		locs = []itinerary.Location{}
	}
	if days == nil {
		days = []itinerary.DaySchedule{}
	}

	return &itinerary.TripPlanResponse{
		Destinations:       locs,
		TripSummary:        summary,
		Routes:             routes,
		DailyItinerary:     days,
		TravelTips:         append([]string(nil), baseTravelTips...),
		PackingSuggestions: packingSuggestions(n),
	}
}

func durationLabel(days int) string {
	if days <= 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func bestTimeToVisit(n *itinerary.NormalizedRequest) string {
	if n.StartDate != nil {
		return fmt.Sprintf("Planned for %s; check seasonal events before you go", n.StartDate.Format("January 2006"))
	}
	return "Spring and autumn usually bring mild weather and smaller crowds"
}

func packingSuggestions(n *itinerary.NormalizedRequest) []string {
	list := append([]string(nil), basePackingList...)
	if n.Travelers.Children > 0 {
		list = append(list, "Snacks and entertainment for the children", "Basic first aid kit")
	}
	if n.DurationDays > 3 {
		list = append(list, "Laundry bag", "Extra clothing layers")
	}
	return list
}
