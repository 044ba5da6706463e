package tripplanner

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone names from tzf must load on hosts without a zoneinfo database

	"github.com/ringsaturn/tzf"
)

// TZFResolver looks up timezones offline from the tzf polygon data.
type TZFResolver struct {
	finder tzf.F
}

// NewTZFResolver loads the embedded timezone dataset.
func NewTZFResolver() (*TZFResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load timezone data: %w", err)
	}
	return &TZFResolver{finder: finder}, nil
}

// TimezoneAt returns the IANA zone at the coordinate, or "" when unknown.
func (r *TZFResolver) TimezoneAt(lat, lng float64) string {
	return r.finder.GetTimezoneName(lng, lat)
}

// localDate is midnight UTC of the calendar date that now falls on in zone.
// An empty or unknown zone uses now's own location.
func localDate(now time.Time, zone string) time.Time {
	if zone != "" {
		if loc, err := time.LoadLocation(zone); err == nil {
			now = now.In(loc)
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
