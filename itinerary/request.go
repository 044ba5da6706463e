package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// TripType is the coarse trip length category.
type TripType string

const (
	TripDayTrip TripType = "day_trip"
	TripWeekend TripType = "weekend"
	TripWeek    TripType = "week"
	TripCustom  TripType = "custom"
)

// canonicalDays is the assumed length of a trip type given without dates.
var canonicalDays = map[TripType]int{
	TripDayTrip: 1,
	TripWeekend: 2,
	TripWeek:    7,
	TripCustom:  3,
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Mode says whether a request builds a new trip or edits an existing one.
type Mode string

const (
	ModeNew    Mode = "new"
	ModeModify Mode = "modify"
)

// ModificationNewTrip is the modification_type value that means "not a modification".
const ModificationNewTrip = "new_trip"

// Request defaults applied by Normalize.
const (
	DefaultBudget    = "moderate"
	DefaultGroupType = "solo traveler"
)

// Travelers counts the party.
type Travelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// ExistingTrip is a previously generated plan sent back for modification.
// Only Destinations is trusted; the other fields are context.
type ExistingTrip struct {
	Destinations   []Location    `json:"destinations"`
	DailyItinerary []DaySchedule `json:"daily_itinerary,omitempty"`
	TripSummary    *TripSummary  `json:"trip_summary,omitempty"`
}

// Request is the loosely specified inbound trip request.
type Request struct {
	Destination           string        `json:"destination,omitempty"`
	Destinations          []string      `json:"destinations,omitempty"`
	TripType              TripType      `json:"trip_type,omitempty"`
	Interests             []string      `json:"interests,omitempty"`
	StartDate             string        `json:"start_date,omitempty"`
	EndDate               string        `json:"end_date,omitempty"`
	Budget                string        `json:"budget,omitempty"`
	GroupType             string        `json:"group_type,omitempty"`
	Travelers             *Travelers    `json:"travelers,omitempty"`
	ModificationType      string        `json:"modification_type,omitempty"`
	ExistingTrip          *ExistingTrip `json:"existing_trip,omitempty"`
	ModificationRequest   string        `json:"modification_request,omitempty"`
	ActivityToReplace     string        `json:"activity_to_replace,omitempty"`
	NewActivityPreference string        `json:"new_activity_preference,omitempty"`
	DayToModify           int           `json:"day_to_modify,omitempty"`
}

// NormalizedRequest is a validated Request with every default applied.
type NormalizedRequest struct {
	Destination  string
	TripType     TripType
	DurationDays int
	StartDate    *time.Time
	EndDate      *time.Time
	Mode         Mode

	Interests []string
	Budget    string
	GroupType string
	Travelers Travelers

	ModificationType      string
	ModificationRequest   string
	ActivityToReplace     string
	NewActivityPreference string
	DayToModify           int

	// Existing is set in ModeModify only.
	Existing *ExistingTrip
}

// Modifying reports whether the request edits an existing trip.
func (n *NormalizedRequest) Modifying() bool {
	return n.Mode == ModeModify
}

// Normalize validates req and derives destination, duration, trip type and mode.
// now anchors the relative dates "today" and "tomorrow".
func Normalize(req Request, now time.Time) (*NormalizedRequest, error) {
	dest := strings.TrimSpace(req.Destination)
	if dest == "" && len(req.Destinations) > 0 {
		dest = strings.TrimSpace(req.Destinations[0])
	}
	if dest == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrMissingDestination)
	}

	n := &NormalizedRequest{
		Destination:           dest,
		Interests:             compact(req.Interests),
		Budget:                orDefault(req.Budget, DefaultBudget),
		GroupType:             orDefault(req.GroupType, DefaultGroupType),
		Travelers:             Travelers{Adults: 1},
		ModificationType:      strings.TrimSpace(req.ModificationType),
		ModificationRequest:   strings.TrimSpace(req.ModificationRequest),
		ActivityToReplace:     strings.TrimSpace(req.ActivityToReplace),
		NewActivityPreference: strings.TrimSpace(req.NewActivityPreference),
		DayToModify:           req.DayToModify,
		Mode:                  ModeNew,
	}
	if req.Travelers != nil {
		if req.Travelers.Adults > 0 {
			n.Travelers.Adults = req.Travelers.Adults
		}
		if req.Travelers.Children > 0 {
			n.Travelers.Children = req.Travelers.Children
		}
	}

	start, err := parseDate("start_date", req.StartDate, now)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate, now)
	if err != nil {
		return nil, err
	}

	if err := n.resolveDuration(req.TripType, start, end); err != nil {
		return nil, err
	}

	// Existing trip data decides the mode, not the flag alone.
	if n.ModificationType != "" && n.ModificationType != ModificationNewTrip &&
		req.ExistingTrip != nil && len(req.ExistingTrip.Destinations) > 0 {
		n.Mode = ModeModify
		n.Existing = req.ExistingTrip
	}

	return n, nil
}

func (n *NormalizedRequest) resolveDuration(tripType TripType, start, end *time.Time) error {
	if start != nil && end != nil {
		if end.Before(*start) {
			return fmt.Errorf("%w: end_date %s is before start_date %s",
				ErrInvalidRequest, end.Format(DateLayout), start.Format(DateLayout))
		}
		n.DurationDays = int(end.Sub(*start).Hours()/24) + 1
		n.TripType = TripTypeForDays(n.DurationDays)
		n.StartDate, n.EndDate = start, end
		return nil
	}

	if tripType == "" {
		tripType = TripDayTrip
	}
	days, ok := canonicalDays[tripType]
	if !ok {
		return fmt.Errorf("%w: unknown trip_type %q", ErrInvalidRequest, tripType)
	}
	n.TripType = tripType
	n.DurationDays = days

	// A single date anchors the other end of the trip.
	switch {
	case start != nil:
		e := start.AddDate(0, 0, days-1)
		n.StartDate, n.EndDate = start, &e
	case end != nil:
		s := end.AddDate(0, 0, -(days - 1))
		n.StartDate, n.EndDate = &s, end
	}
	return nil
}

// TripTypeForDays maps an inclusive day count to a trip type.
func TripTypeForDays(days int) TripType {
	switch {
	case days <= 1:
		return TripDayTrip
	case days <= 3:
		return TripWeekend
	default:
		return TripWeek
	}
}

// parseDate accepts YYYY-MM-DD, RFC 3339, "today" and "tomorrow".
// The result is midnight UTC of the calendar date.
func parseDate(field, value string, now time.Time) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var t time.Time
	switch strings.ToLower(value) {
	case "today":
		t = now
	case "tomorrow":
		t = now.AddDate(0, 0, 1)
	default:
		var err error
		if t, err = time.Parse(DateLayout, value); err != nil {
			if t, err = time.Parse(time.RFC3339, value); err != nil {
				return nil, fmt.Errorf("%w: %s %q is not a date (want YYYY-MM-DD)", ErrInvalidRequest, field, value)
			}
		}
	}

	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func compact(items []string) []string {
	return lo.FilterMap(items, func(it string, _ int) (string, bool) {
		it = strings.TrimSpace(it)
		return it, it != ""
	})
}
