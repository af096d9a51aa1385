// internal/planner/prompt/builder.go
package prompt

import (
	"fmt"
	"strings"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/fallback"
	"itinerary-workers/internal/planner/weather"
)

const systemPrompt = `You are an experienced travel planner writing a trip itinerary as an HTML fragment.
Rules:
- Use <h2> for each section heading, exactly as named in the request, in the given order.
- Use <h3> for each day, formatted "Day N: Weekday, Mon D".
- Name real places. Never write placeholders such as [Destination] or lorem ipsum.
- Link places with <a href="map:PLACE">PLACE</a>. Link lodging with href="hotels:QUERY",
  bookable tours with href="activities:QUERY", reviews with href="reviews:QUERY".
- Add at most one image per section as <img src="image:QUERY" alt="...">.
- Do not include <html>, <head>, <body>, scripts or styles.`

// Context is everything the prompt is built from.
type Context struct {
	Request  models.TripRequest
	Mode     models.Mode
	Budget   models.BudgetBreakdown
	Advisory models.BookingAdvisory
	Weather  weather.Outlook
}

// PreviewSections are the headings a preview covers.
var PreviewSections = []string{
	models.SectionOverview,
	models.SectionBudget,
	models.SectionLodging,
	models.SectionAttractions,
	models.SectionItinerary,
}

// Sections returns the headings requested for mode.
func Sections(mode models.Mode) []string {
	if mode == models.ModePreview {
		return PreviewSections
	}
	return models.CanonicalSections
}

// Build returns the system and user prompts.
func Build(c Context) (system, user string) {
	req := c.Request
	var w strings.Builder

	days := req.Days()
	fmt.Fprintf(&w, "Plan a %d-day trip to %s", days, req.Destination)
	if req.StartDate != "" {
		fmt.Fprintf(&w, " from %s to %s", req.StartDate, req.EndDate)
	}
	fmt.Fprintf(&w, " for %s.\n", travelers(req))
	fmt.Fprintf(&w, "Travel style: %s.\n", styleOf(req.Style))
	if req.Purpose != "" {
		fmt.Fprintf(&w, "Purpose: %s.\n", req.Purpose)
	}
	if req.Preferences != "" {
		fmt.Fprintf(&w, "Interests: %s.\n", req.Preferences)
	}
	if req.Dietary != "" {
		fmt.Fprintf(&w, "Dietary needs: %s.\n", req.Dietary)
	}

	w.WriteString("\nBudget (use these figures, do not invent others):\n")
	writeBudget(&w, c.Budget)

	if !c.Advisory.Empty() {
		w.WriteString("\nBooking advice to reflect in the plan:\n")
		writeList(&w, "Warning", c.Advisory.Warnings)
		writeList(&w, "Opportunity", c.Advisory.Opportunities)
		writeList(&w, "Recommendation", c.Advisory.Recommendations)
	}

	if c.Weather.Summary != "" {
		fmt.Fprintf(&w, "\nWeather: %s\n", c.Weather.Summary)
	}

	w.WriteString("\nWrite these sections in order:\n")
	for i, s := range Sections(c.Mode) {
		fmt.Fprintf(&w, "%d. %s\n", i+1, s)
	}

	if c.Mode == models.ModePreview {
		n := fallback.PreviewDays
		if days < n {
			n = days
		}
		fmt.Fprintf(&w, "\nThis is a preview: under %s cover only the first %d day(s) in detail.\n", models.SectionItinerary, n)
	} else {
		n := days
		if n > fallback.MaxDays {
			n = fallback.MaxDays
		}
		fmt.Fprintf(&w, "\nUnder %s write one <h3> per day for all %d days.\n", models.SectionItinerary, n)
	}

	return systemPrompt, w.String()
}

func travelers(req models.TripRequest) string {
	adults := req.Adults
	if adults < 1 && req.Children < 1 {
		adults = 1
	}
	s := fmt.Sprintf("%d adult(s)", adults)
	if req.Children > 0 {
		s += fmt.Sprintf(" and %d child(ren)", req.Children)
	}
	return s
}

func styleOf(s models.Style) models.Style {
	if s == "" {
		return models.StyleMid
	}
	return models.ParseStyle(string(s))
}

func writeBudget(w *strings.Builder, b models.BudgetBreakdown) {
	fmt.Fprintf(w, "- Total: %s %.0f", b.Currency, b.Total)
	if b.Derived {
		w.WriteString(" (estimated)")
	}
	w.WriteString("\n")
	rows := []struct {
		name string
		c    models.CategoryAmount
	}{
		{"Stay", b.Stay},
		{"Food", b.Food},
		{"Activities", b.Activities},
		{"Transit", b.Transit},
		{"Equipment", b.Equipment},
	}
	for _, r := range rows {
		if r.c.Total == 0 {
			continue
		}
		fmt.Fprintf(w, "- %s: %s %.0f (%.0f%%)\n", r.name, b.Currency, r.c.Total, r.c.Percent*100)
	}
	if b.Surcharge != nil {
		fmt.Fprintf(w, "- Note: %s\n", b.Surcharge.Description)
	}
}

func writeList(w *strings.Builder, label string, items []string) {
	for _, it := range items {
		fmt.Fprintf(w, "- %s: %s\n", label, it)
	}
}
