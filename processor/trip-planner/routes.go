package tripplanner

import "github.com/c360studio/tripplanner/itinerary"

// SynthesizeRoutes links consecutive locations with placeholder walking
// routes. It returns nil for fewer than two locations.
func SynthesizeRoutes(locs []itinerary.Location) []itinerary.Route {
	if len(locs) < 2 {
		return nil
	}
	routes := make([]itinerary.Route, 0, len(locs)-1)
	for i := 1; i < len(locs); i++ {
		routes = append(routes, itinerary.Route{
			Origin:              locs[i-1],
			Destination:         locs[i],
			Distance:            itinerary.SynthesizedDistance,
			EstimatedTravelTime: itinerary.SynthesizedTravelTime,
			TransportationModes: []itinerary.TransportationMode{{
				Mode:        itinerary.SynthesizedTransport,
				Duration:    itinerary.SynthesizedTravelTime,
				Description: "Walk from " + locs[i-1].Name + " to " + locs[i].Name,
			}},
		})
	}
	return routes
}
