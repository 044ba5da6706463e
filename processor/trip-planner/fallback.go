package tripplanner

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/c360studio/tripplanner/llm"
)

// legacyDocument is the itinerary shape models produced before tool calling.
// destinations is accepted when a model echoes a finished plan back.
type legacyDocument struct {
	Locations    []map[string]any `json:"locations"`
	Destinations []map[string]any `json:"destinations"`
	Routes       []map[string]any `json:"routes"`
}

// ParseLegacyText recovers tool calls from a model reply that carried the
// itinerary as JSON text. The JSON may be bare or inside a markdown fence.
// Each legacy location becomes a location call and each legacy route a line
// call, so the result feeds ExtractCalls like any structured reply.
func ParseLegacyText(text string) ([]llm.ToolCall, error) {
	raw := llm.ExtractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model text", itinerary.ErrUnparseableModelResponse)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var doc legacyDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", itinerary.ErrUnparseableModelResponse, err)
	}

	entries := doc.Locations
	if len(entries) == 0 {
		entries = doc.Destinations
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: JSON has no locations array", itinerary.ErrUnparseableModelResponse)
	}

	next := maxLegacySequence(entries) + 1
	calls := make([]llm.ToolCall, 0, len(entries)+len(doc.Routes))
	for _, entry := range entries {
		args := legacyLocationArgs(entry)
		if _, ok := args["sequence"]; !ok {
			args["sequence"] = next
			next++
		}
		calls = append(calls, llm.ToolCall{Name: ToolLocation, Arguments: args})
	}
	for _, route := range doc.Routes {
		if args, ok := legacyLineArgs(route); ok {
			calls = append(calls, llm.ToolCall{Name: ToolLine, Arguments: args})
		}
	}
	return calls, nil
}

// maxLegacySequence is the highest explicit sequence among entries, 0 when none has one.
func maxLegacySequence(entries []map[string]any) int {
	highest := 0
	for _, entry := range entries {
		if seq, ok := toInt(entry["sequence"]); ok && seq > highest {
			highest = seq
		}
	}
	return highest
}

func legacyLocationArgs(entry map[string]any) map[string]any {
	args := map[string]any{}
	for _, key := range []string{"name", "description", "time", "duration", "category"} {
		if v, ok := entry[key]; ok {
			args[key] = v
		}
	}
	if _, ok := args["category"]; !ok {
		if v, ok := entry["type"]; ok {
			args["category"] = v
		}
	}

	if lat, lng, ok := legacyPoint(entry); ok {
		args["lat"], args["lng"] = lat, lng
	}

	if seq, ok := entry["sequence"]; ok && seq != nil {
		args["sequence"] = seq
	}
	return args
}

// legacyPoint finds a coordinate pair on an entry, nested under
// coordinates or location, or flat on the entry itself.
func legacyPoint(entry map[string]any) (lat, lng any, ok bool) {
	candidates := []map[string]any{}
	for _, key := range []string{"coordinates", "location"} {
		if nested, isMap := entry[key].(map[string]any); isMap {
			candidates = append(candidates, nested)
		}
	}
	candidates = append(candidates, entry)

	for _, c := range candidates {
		lat, latOK := firstValue(c, "latitude", "lat")
		lng, lngOK := firstValue(c, "longitude", "lng", "lon")
		if latOK && lngOK {
			return lat, lng, true
		}
	}
	return nil, nil, false
}

func legacyLineArgs(route map[string]any) (map[string]any, bool) {
	origin, ok := route["origin"].(map[string]any)
	if !ok {
		return nil, false
	}
	dest, ok := route["destination"].(map[string]any)
	if !ok {
		return nil, false
	}
	startLat, startLng, ok := legacyPoint(origin)
	if !ok {
		return nil, false
	}
	endLat, endLng, ok := legacyPoint(dest)
	if !ok {
		return nil, false
	}

	args := map[string]any{
		"start": map[string]any{"lat": startLat, "lng": startLng},
		"end":   map[string]any{"lat": endLat, "lng": endLng},
	}
	if v, ok := route["distance"]; ok {
		args["distance"] = v
	}
	if v, ok := route["estimated_travel_time"]; ok {
		args["travel_time"] = v
	}

	if modes, ok := route["transportation_modes"].([]any); ok && len(modes) > 0 {
		if first, ok := modes[0].(map[string]any); ok {
			if v := stringArg(first, "mode"); v != "" {
				args["transport"] = v
			}
			if v := stringArg(first, "description"); v != "" {
				args["description"] = v
			}
			if v := stringArg(first, "cost"); v != "" {
				args["cost"] = v
			}
			if _, set := args["travel_time"]; !set {
				if v := stringArg(first, "duration"); v != "" {
					args["travel_time"] = v
				}
			}
		}
	}
	if _, set := args["transport"]; !set {
		if v := stringArg(route, "transport", "mode"); v != "" {
			args["transport"] = v
		}
	}
	return args, true
}

func firstValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
