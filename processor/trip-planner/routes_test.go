package tripplanner

import (
	"testing"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeRoutes(t *testing.T) {
	for n := 0; n <= 7; n++ {
		locs := make([]itinerary.Location, n)
		for i := range locs {
			locs[i] = loc(string(rune('A'+i)), float64(i), float64(i), i+1)
		}

		routes := SynthesizeRoutes(locs)
		if n < 2 {
			assert.Empty(t, routes, "n=%d", n)
			continue
		}
		require.Len(t, routes, n-1, "n=%d", n)
		for i, r := range routes {
			assert.Equal(t, locs[i], r.Origin)
			assert.Equal(t, locs[i+1], r.Destination)
		}
	}
}

func TestSynthesizeRoutes_Placeholders(t *testing.T) {
	routes := SynthesizeRoutes([]itinerary.Location{
		loc("Eiffel Tower", 48.8584, 2.2945, 1),
		loc("Louvre", 48.8606, 2.3376, 2),
	})
	require.Len(t, routes, 1)

	r := routes[0]
	assert.Equal(t, "1 km", r.Distance)
	assert.Equal(t, "10 minutes", r.EstimatedTravelTime)
	require.Len(t, r.TransportationModes, 1)
	assert.Equal(t, "walking", r.TransportationModes[0].Mode)
	assert.Equal(t, "10 minutes", r.TransportationModes[0].Duration)
	assert.Equal(t, "Walk from Eiffel Tower to Louvre", r.TransportationModes[0].Description)
}
