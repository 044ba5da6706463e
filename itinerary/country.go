package itinerary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// usaHints are destination fragments that name a US place without saying so.
var usaHints = []string{"central park", "nyc", "new york", "manhattan", "brooklyn"}

var upperCountries = map[string]bool{"usa": true, "us": true, "uk": true, "uae": true}

// CountryFor guesses a country label from a destination string. It is a
// display hint only: "Kyoto, Japan" gives "Japan", a bare "Lisbon" gives "Lisbon".
func CountryFor(destination string) string {
	d := strings.TrimRight(strings.TrimSpace(destination), ", ")
	if d == "" {
		return ""
	}

	lower := strings.ToLower(d)
	for _, hint := range usaHints {
		if strings.Contains(lower, hint) {
			return "USA"
		}
	}

	last := d
	if i := strings.LastIndex(d, ","); i >= 0 {
		last = strings.TrimSpace(d[i+1:])
	}
	if upperCountries[strings.ToLower(last)] {
		return strings.ToUpper(last)
	}
	return cases.Title(language.English).String(last)
}
