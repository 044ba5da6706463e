package tripplanner

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/c360studio/tripplanner/llm"
)

// TimezoneResolver names the IANA zone at a coordinate. An empty result means unknown.
type TimezoneResolver interface {
	TimezoneAt(lat, lng float64) string
}

// ExtractHint carries request context the extractor stamps onto locations.
type ExtractHint struct {
	// Country is the best-effort country label for every location.
	Country string

	// Tolerance for line endpoint matching. Zero uses itinerary.CoordinateTolerance.
	Tolerance float64

	// Timezones is optional.
	Timezones TimezoneResolver
}

// Extraction is the outcome of turning tool calls into itinerary entities.
type Extraction struct {
	// Locations sorted by sequence, sequences unique.
	Locations []itinerary.Location

	// Routes whose endpoints both matched a location, in call order.
	Routes []itinerary.Route

	// Skipped counts location or line calls dropped for bad arguments.
	Skipped int

	// Unmatched counts line calls dropped because an endpoint matched no location.
	Unmatched int

	// Ignored counts calls to tools other than location and line.
	Ignored int
}

// ExtractCalls materializes locations and routes from the model's tool calls.
// Every location is indexed before any line is resolved, so emission order
// between the two tools does not matter. A bad call is logged and skipped;
// it never fails the whole extraction.
func ExtractCalls(calls []llm.ToolCall, hint ExtractHint, logger *slog.Logger) Extraction {
	if logger == nil {
		logger = slog.Default()
	}

	var ex Extraction
	var lines []llm.ToolCall
	seen := make(map[int]string)

	for i, call := range calls {
		switch call.Name {
		case ToolLocation:
			loc, err := parseLocation(call.Arguments, hint)
			if err != nil {
				ex.Skipped++
				logger.Warn("Skipping location call", "index", i, "error", err)
				continue
			}
			if prev, dup := seen[loc.Sequence]; dup {
				ex.Skipped++
				logger.Warn("Skipping location with duplicate sequence",
					"index", i, "sequence", loc.Sequence, "name", loc.Name, "kept", prev)
				continue
			}
			seen[loc.Sequence] = loc.Name
			ex.Locations = append(ex.Locations, loc)
		case ToolLine:
			lines = append(lines, call)
		default:
			ex.Ignored++
			logger.Debug("Ignoring unknown tool call", "index", i, "tool", call.Name)
		}
	}

	sort.Slice(ex.Locations, func(i, j int) bool {
		return ex.Locations[i].Sequence < ex.Locations[j].Sequence
	})

	index := NewCoordinateIndex(ex.Locations, hint.Tolerance)
	for i, call := range lines {
		route, err := parseLine(call.Arguments, index)
		switch {
		case errors.Is(err, errUnmatchedEndpoint):
			ex.Unmatched++
			logger.Warn("Dropping line with unmatched endpoint", "line", i, "args", call.Arguments)
		case err != nil:
			ex.Skipped++
			logger.Warn("Skipping line call", "line", i, "error", err)
		default:
			ex.Routes = append(ex.Routes, route)
		}
	}

	logger.Debug("Extracted tool calls",
		"calls", len(calls),
		"locations", len(ex.Locations),
		"routes", len(ex.Routes),
		"skipped", ex.Skipped,
		"unmatched", ex.Unmatched,
		"ignored", ex.Ignored)

	return ex
}

var errUnmatchedEndpoint = errors.New("endpoint matches no location")

func parseLocation(args map[string]any, hint ExtractHint) (itinerary.Location, error) {
	name := stringArg(args, "name")
	if name == "" {
		return itinerary.Location{}, fmt.Errorf("missing name")
	}

	coords, err := parsePoint(args)
	if err != nil {
		return itinerary.Location{}, fmt.Errorf("%s: %w", name, err)
	}

	raw, present := args["sequence"]
	if !present {
		return itinerary.Location{}, fmt.Errorf("%s: missing sequence", name)
	}
	seq, ok := toInt(raw)
	if !ok || seq < 1 {
		return itinerary.Location{}, fmt.Errorf("%s: invalid sequence %v", name, raw)
	}

	loc := itinerary.Location{
		Name:        name,
		Country:     hint.Country,
		Coordinates: coords,
		Description: stringArg(args, "description"),
		Time:        stringArg(args, "time"),
		Duration:    stringArg(args, "duration"),
		Sequence:    seq,
		Category:    stringArg(args, "category"),
	}
	if hint.Timezones != nil {
		loc.Timezone = hint.Timezones.TimezoneAt(coords.Latitude, coords.Longitude)
	}
	return loc, nil
}

// parsePoint reads lat/lng from a flat argument map and range-checks them.
func parsePoint(args map[string]any) (itinerary.Coordinates, error) {
	lat, ok := firstFloat(args, "lat", "latitude")
	if !ok {
		return itinerary.Coordinates{}, fmt.Errorf("missing or invalid latitude")
	}
	lng, ok := firstFloat(args, "lng", "longitude", "lon")
	if !ok {
		return itinerary.Coordinates{}, fmt.Errorf("missing or invalid longitude")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return itinerary.Coordinates{}, fmt.Errorf("coordinates out of range (%g, %g)", lat, lng)
	}
	return itinerary.Coordinates{Latitude: lat, Longitude: lng}, nil
}

func parseLine(args map[string]any, index *CoordinateIndex) (itinerary.Route, error) {
	startArgs, ok := objectArg(args, "start")
	if !ok {
		return itinerary.Route{}, fmt.Errorf("missing start")
	}
	endArgs, ok := objectArg(args, "end")
	if !ok {
		return itinerary.Route{}, fmt.Errorf("missing end")
	}
	start, err := parsePoint(startArgs)
	if err != nil {
		return itinerary.Route{}, fmt.Errorf("start: %w", err)
	}
	end, err := parsePoint(endArgs)
	if err != nil {
		return itinerary.Route{}, fmt.Errorf("end: %w", err)
	}

	origin, ok := index.Match(start)
	if !ok {
		return itinerary.Route{}, errUnmatchedEndpoint
	}
	dest, ok := index.Match(end)
	if !ok {
		return itinerary.Route{}, errUnmatchedEndpoint
	}

	transport := stringArg(args, "transport")
	if transport == "" {
		transport = itinerary.SynthesizedTransport
	}
	travelTime := stringArg(args, "travel_time")

	return itinerary.Route{
		Origin:              origin,
		Destination:         dest,
		Distance:            stringArg(args, "distance"),
		EstimatedTravelTime: travelTime,
		TransportationModes: []itinerary.TransportationMode{{
			Mode:        transport,
			Duration:    travelTime,
			Description: stringArg(args, "description"),
			Cost:        stringArg(args, "cost"),
		}},
	}, nil
}
