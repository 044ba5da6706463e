package tripplanner

import "github.com/c360studio/tripplanner/llm"

// Tool names the model may call.
const (
	ToolLocation = "location"
	ToolLine     = "line"
)

// ToolSchema returns the two tools offered to the model. The schema is fixed;
// callers must not mutate the returned maps.
func ToolSchema() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        ToolLocation,
			Description: "Add one stop to the itinerary. Call once per stop, in visiting order.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        stringProp("Name of the place"),
					"lat":         numberProp("Latitude in decimal degrees"),
					"lng":         numberProp("Longitude in decimal degrees"),
					"description": stringProp("What to do or see there"),
					"sequence": map[string]any{
						"type":        "integer",
						"description": "1-based position of this stop across the whole trip",
						"minimum":     1,
					},
					"time":     stringProp("Suggested time of day, e.g. 09:00"),
					"duration": stringProp("Suggested visit length, e.g. 2 hours"),
					"category": stringProp("Kind of stop, e.g. museum, park, restaurant"),
				},
				"required": []string{"name", "lat", "lng", "description", "sequence"},
			},
		},
		{
			Name:        ToolLine,
			Description: "Connect two stops already added with the location tool. Use their exact coordinates.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start":       pointProp("Coordinates of the stop the leg starts at"),
					"end":         pointProp("Coordinates of the stop the leg ends at"),
					"transport":   stringProp("How to travel, e.g. walking, metro, taxi"),
					"distance":    stringProp("Approximate distance, e.g. 1.2 km"),
					"travel_time": stringProp("Approximate travel time, e.g. 15 minutes"),
					"description": stringProp("Directions or notes for this leg"),
					"cost":        stringProp("Approximate fare, if any"),
				},
				"required": []string{"start", "end", "transport"},
			},
		},
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func numberProp(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func pointProp(desc string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": desc,
		"properties": map[string]any{
			"lat": numberProp("Latitude in decimal degrees"),
			"lng": numberProp("Longitude in decimal degrees"),
		},
		"required": []string{"lat", "lng"},
	}
}
