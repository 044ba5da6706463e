package tripplanner

import (
	"errors"
	"testing"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyParis = `Here is your itinerary:

` + "```json" + `
{
  "locations": [
    {"name": "Eiffel Tower", "coordinates": {"latitude": 48.8584, "longitude": 2.2945}, "description": "Visit Eiffel Tower", "sequence": 1},
    {"name": "Louvre", "coordinates": {"latitude": 48.8606, "longitude": 2.3376}, "description": "Visit Louvre", "sequence": 2},
    {"name": "Notre-Dame", "coordinates": {"latitude": 48.8530, "longitude": 2.3499}, "description": "Visit Notre-Dame", "sequence": 3},
  ],
  "routes": [
    {
      "origin": {"name": "Eiffel Tower", "coordinates": {"latitude": 48.8584, "longitude": 2.2945}},
      "destination": {"name": "Louvre", "coordinates": {"latitude": 48.8606, "longitude": 2.3376}},
      "transportation_modes": [{"mode": "metro"}]
    },
    {
      "origin": {"name": "Louvre", "coordinates": {"latitude": 48.8606, "longitude": 2.3376}},
      "destination": {"name": "Notre-Dame", "coordinates": {"latitude": 48.8530, "longitude": 2.3499}},
      "transportation_modes": [{"mode": "walking"}]
    }
  ]
}
` + "```"

func TestParseLegacyText_ShapeEquivalentToToolCalls(t *testing.T) {
	calls, err := ParseLegacyText(legacyParis)
	require.NoError(t, err)

	hint := ExtractHint{Country: "France"}
	fromText := ExtractCalls(calls, hint, nil)
	fromTools := ExtractCalls(parisCalls(), hint, nil)

	assert.Equal(t, fromTools.Locations, fromText.Locations)
	assert.Equal(t, fromTools.Routes, fromText.Routes)
}

func TestParseLegacyText_KeyAliases(t *testing.T) {
	text := `{"locations": [
		{"name": "A", "lat": 1.5, "lng": 2.5, "description": "flat"},
		{"name": "B", "latitude": 3, "longitude": 4, "type": "museum"},
		{"name": "C", "location": {"lat": 5, "lon": 6}, "sequence": 7},
		{"name": "D", "coordinates": {"lat": "7.25", "lng": "8.25"}}
	]}`

	calls, err := ParseLegacyText(text)
	require.NoError(t, err)
	require.Len(t, calls, 4)

	ex := ExtractCalls(calls, ExtractHint{}, nil)
	require.Len(t, ex.Locations, 4)

	byName := map[string]itinerary.Location{}
	for _, l := range ex.Locations {
		byName[l.Name] = l
	}
	assert.Equal(t, itinerary.Coordinates{Latitude: 1.5, Longitude: 2.5}, byName["A"].Coordinates)
	assert.Equal(t, itinerary.Coordinates{Latitude: 3, Longitude: 4}, byName["B"].Coordinates)
	assert.Equal(t, itinerary.Coordinates{Latitude: 5, Longitude: 6}, byName["C"].Coordinates)
	assert.Equal(t, itinerary.Coordinates{Latitude: 7.25, Longitude: 8.25}, byName["D"].Coordinates)

	assert.Equal(t, "museum", byName["B"].Category)
	assert.Equal(t, 7, byName["C"].Sequence)
	assert.Equal(t, 8, byName["A"].Sequence, "missing sequences continue after the highest explicit one")
	assert.Equal(t, 9, byName["B"].Sequence)
	assert.Equal(t, 10, byName["D"].Sequence)
}

func TestParseLegacyText_MissingSequences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int
	}{
		{
			name: "none explicit uses array order",
			text: `{"locations": [{"name": "A", "lat": 1, "lng": 1}, {"name": "B", "lat": 2, "lng": 2}, {"name": "C", "lat": 3, "lng": 3}]}`,
			want: map[string]int{"A": 1, "B": 2, "C": 3},
		},
		{
			name: "implicit entry does not collide with an explicit one",
			text: `{"locations": [{"name": "A", "lat": 1, "lng": 1}, {"name": "B", "lat": 2, "lng": 2, "sequence": 1}]}`,
			want: map[string]int{"B": 1, "A": 2},
		},
		{
			name: "string sequence counts as explicit",
			text: `{"locations": [{"name": "A", "lat": 1, "lng": 1, "sequence": "2"}, {"name": "B", "lat": 2, "lng": 2}]}`,
			want: map[string]int{"A": 2, "B": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := ParseLegacyText(tt.text)
			require.NoError(t, err)

			ex := ExtractCalls(calls, ExtractHint{}, nil)
			assert.Zero(t, ex.Skipped)
			got := map[string]int{}
			for _, l := range ex.Locations {
				got[l.Name] = l.Sequence
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLegacyText_DestinationsAlias(t *testing.T) {
	calls, err := ParseLegacyText(`{"destinations": [{"name": "Louvre", "coordinates": {"latitude": 48.8606, "longitude": 2.3376}, "sequence": 1}]}`)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, ToolLocation, calls[0].Name)
}

func TestParseLegacyText_RouteWithoutCoordinatesDropped(t *testing.T) {
	text := `{"locations": [{"name": "A", "lat": 1, "lng": 1}],
		"routes": [{"origin": {"name": "A"}, "destination": {"name": "B"}}]}`
	calls, err := ParseLegacyText(text)
	require.NoError(t, err)
	require.Len(t, calls, 1)
}

func TestParseLegacyText_RouteFields(t *testing.T) {
	text := `{"locations": [{"name": "A", "lat": 1, "lng": 1}, {"name": "B", "lat": 2, "lng": 2}],
		"routes": [{
			"origin": {"lat": 1, "lng": 1},
			"destination": {"lat": 2, "lng": 2},
			"distance": "150 km",
			"estimated_travel_time": "2 hours",
			"transportation_modes": [{"mode": "train", "description": "Regional line", "cost": "$20"}]
		}]}`

	calls, err := ParseLegacyText(text)
	require.NoError(t, err)
	require.Len(t, calls, 3)

	line := calls[2]
	assert.Equal(t, ToolLine, line.Name)
	assert.Equal(t, "train", line.Arguments["transport"])
	assert.Equal(t, "Regional line", line.Arguments["description"])
	assert.Equal(t, "$20", line.Arguments["cost"])
	assert.Equal(t, "150 km", line.Arguments["distance"])
	assert.Equal(t, "2 hours", line.Arguments["travel_time"])
}

func TestParseLegacyText_Unparseable(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prose", "I'd love to help! Could you tell me more about your plans?"},
		{"empty", ""},
		{"broken json", `{"locations": [{"name": "A"`},
		{"no locations", `{"itinerary": "Day 1: walk around"}`},
		{"empty locations", `{"locations": []}`},
		{"locations not an array", `{"locations": "Eiffel Tower"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := ParseLegacyText(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, itinerary.ErrUnparseableModelResponse), "got %v", err)
			assert.Nil(t, calls)
		})
	}
}

func TestParseLegacyText_OnlyLocationAndLineCalls(t *testing.T) {
	calls, err := ParseLegacyText(legacyParis)
	require.NoError(t, err)

	var locations, lines int
	for _, c := range calls {
		switch c.Name {
		case ToolLocation:
			locations++
		case ToolLine:
			lines++
		default:
			t.Errorf("unexpected call %q", c.Name)
		}
	}
	assert.Equal(t, 3, locations)
	assert.Equal(t, 2, lines)
}
