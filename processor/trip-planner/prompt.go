package tripplanner

import (
	"fmt"
	"strings"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/c360studio/tripplanner/llm"
)

// Prompt is the instruction text handed to the model.
type Prompt struct {
	System string
	User   string
}

// Messages converts the prompt to chat messages.
func (p Prompt) Messages() []llm.Message {
	return []llm.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}

// Modification directives. The model must see all three verbatim.
const (
	DirectiveKeep      = "Keep unchanged"
	DirectiveImplement = "Implement changes"
	DirectiveAdjust    = "Adjust logistics"
)

const defaultSeason = "the optimal season to visit"

// ComposePrompt builds the prompt for a normalized request. The output is a
// pure function of n and never asks the model for more information.
func ComposePrompt(n *itinerary.NormalizedRequest) Prompt {
	p := Prompt{System: systemPrompt()}
	if n.Modifying() {
		p.User = modifyPrompt(n)
	} else {
		p.User = newTripPrompt(n)
	}
	return p
}

func systemPrompt() string {
	return `You are a travel planner that builds itineraries by calling tools.

## How to Answer

- Call ` + "`location`" + ` once for every stop, with its real coordinates in decimal degrees.
- Number stops with ` + "`sequence`" + ` from 1 upwards across the WHOLE trip, never restarting per day.
- After the stops, call ` + "`line`" + ` for each leg between consecutive stops, copying the exact
  coordinates you gave those stops.
- Plan about ` + fmt.Sprint(itinerary.StopsPerDay) + ` stops per day in a sensible walking or transit order.

## Rules

- Never ask clarifying questions. Missing details have stated defaults; use them.
- Always produce a complete plan in a single response.
- Do not invent places that do not exist.`
}

func newTripPrompt(n *itinerary.NormalizedRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan a %s to %s.\n\n", durationPhrase(n), n.Destination)

	b.WriteString("## Trip Details\n\n")
	fmt.Fprintf(&b, "- **Destination:** %s\n", n.Destination)
	fmt.Fprintf(&b, "- **Trip type:** %s (%s)\n", n.TripType, dayCount(n.DurationDays))
	fmt.Fprintf(&b, "- **Dates:** %s\n", dateContext(n))
	fmt.Fprintf(&b, "- **Interests:** %s\n", interestList(n.Interests))
	fmt.Fprintf(&b, "- **Budget:** %s\n", n.Budget)
	fmt.Fprintf(&b, "- **Group:** %s\n", n.GroupType)
	fmt.Fprintf(&b, "- **Travelers:** %s\n", travelerPhrase(n.Travelers))

	b.WriteString("\n## Expectations\n\n")
	fmt.Fprintf(&b, "- Cover all %s with stops that match the interests above.\n", dayCount(n.DurationDays))
	b.WriteString("- Fit the budget and the group: pace the days for the travelers listed.\n")
	b.WriteString("- Give every stop a short description, a suggested time and a visit duration.\n")
	if n.Travelers.Children > 0 {
		b.WriteString("- Prefer child-friendly stops and keep transfers short.\n")
	}
	b.WriteString("- If anything above says \"not specified\", decide it yourself and continue.\n")

	return b.String()
}

func modifyPrompt(n *itinerary.NormalizedRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Modify an existing %s to %s.\n\n", durationPhrase(n), n.Destination)

	b.WriteString("## Current Itinerary\n\n")
	for _, loc := range n.Existing.Destinations {
		fmt.Fprintf(&b, "%d. **%s** (%.6f, %.6f): %s\n",
			loc.Sequence, loc.Name, loc.Coordinates.Latitude, loc.Coordinates.Longitude, loc.Description)
	}

	b.WriteString("\n## Requested Change\n\n")
	fmt.Fprintf(&b, "- **Modification type:** %s\n", n.ModificationType)
	if n.ModificationRequest != "" {
		fmt.Fprintf(&b, "- **Request:** %s\n", n.ModificationRequest)
	}
	if n.ActivityToReplace != "" {
		fmt.Fprintf(&b, "- **Activity to replace:** %s\n", n.ActivityToReplace)
	}
	if n.NewActivityPreference != "" {
		fmt.Fprintf(&b, "- **New activity preference:** %s\n", n.NewActivityPreference)
	}
	if n.DayToModify > 0 {
		fmt.Fprintf(&b, "- **Day to modify:** %d\n", n.DayToModify)
	}
	fmt.Fprintf(&b, "- **Budget:** %s\n", n.Budget)
	fmt.Fprintf(&b, "- **Group:** %s (%s)\n", n.GroupType, travelerPhrase(n.Travelers))

	b.WriteString("\n## Directives\n\n")
	fmt.Fprintf(&b, "1. **%s:** every stop the request does not touch keeps its name, coordinates and description.\n", DirectiveKeep)
	fmt.Fprintf(&b, "2. **%s:** apply the requested change exactly as asked.\n", DirectiveImplement)
	fmt.Fprintf(&b, "3. **%s:** renumber sequences and redraw lines so the trip stays continuous.\n", DirectiveAdjust)

	b.WriteString("\nCall the tools for the COMPLETE updated itinerary, including unchanged stops.\n")

	return b.String()
}

func durationPhrase(n *itinerary.NormalizedRequest) string {
	if n.TripType == itinerary.TripDayTrip {
		return "day trip"
	}
	return fmt.Sprintf("%d-day trip", n.DurationDays)
}

func dayCount(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func dateContext(n *itinerary.NormalizedRequest) string {
	if n.StartDate == nil {
		return "not specified; plan for " + defaultSeason
	}
	start := n.StartDate.Format(itinerary.DateLayout)
	end := n.EndDate.Format(itinerary.DateLayout)
	if start == end {
		return start
	}
	return start + " to " + end
}

func interestList(interests []string) string {
	if len(interests) == 0 {
		return "not specified; cover the highlights"
	}
	return strings.Join(interests, ", ")
}

func travelerPhrase(t itinerary.Travelers) string {
	s := plural(t.Adults, "adult", "adults")
	if t.Children > 0 {
		s += ", " + plural(t.Children, "child", "children")
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
