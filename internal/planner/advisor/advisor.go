// internal/planner/advisor/advisor.go
package advisor

import (
	"fmt"
	"strings"
	"time"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/destinations"
)

// GroupBookingThreshold is the party size from which group booking is suggested.
const GroupBookingThreshold = 8

// CountryResolver maps a free-text destination to a country code. The default
// implementation is a substring heuristic; a geocoder can replace it.
type CountryResolver interface {
	CountryFor(destination string) (string, bool)
}

// Knowledge exposes the static holiday, event and crowd tables.
type Knowledge interface {
	Country(code string) (destinations.Country, bool)
	CrowdProfile(category string) (destinations.CrowdProfile, bool)
}

type Query struct {
	Destination  string
	ActivityType string
	Date         time.Time
	TimeSlot     string
	GroupSize    int
}

type Advisor struct {
	resolver  CountryResolver
	knowledge Knowledge
}

// New builds an advisor; nil arguments fall back to the embedded catalog.
func New(resolver CountryResolver, knowledge Knowledge) *Advisor {
	if resolver == nil {
		resolver = destinations.Default()
	}
	if knowledge == nil {
		knowledge = destinations.Default()
	}
	return &Advisor{resolver: resolver, knowledge: knowledge}
}

type warning struct {
	text    string
	extreme bool
}

type findings struct {
	country         string
	warnings        []warning
	opportunities   []string
	recommendations []string
	seen            map[string]bool
}

func newFindings() *findings {
	return &findings{seen: make(map[string]bool)}
}

func (f *findings) warn(text string, extreme bool) {
	if f.seen[text] {
		return
	}
	f.seen[text] = true
	f.warnings = append(f.warnings, warning{text: text, extreme: extreme})
}

func (f *findings) opportunity(text string) {
	if f.seen[text] {
		return
	}
	f.seen[text] = true
	f.opportunities = append(f.opportunities, text)
}

func (f *findings) recommend(text string) {
	if f.seen[text] {
		return
	}
	f.seen[text] = true
	f.recommendations = append(f.recommendations, text)
}

// Advise returns booking advice for one date. It has no side effects.
func (a *Advisor) Advise(q Query) models.BookingAdvisory {
	f := newFindings()
	a.collect(q, f)
	return f.advisory()
}

// AdviseRange merges advice for every date, dropping duplicate lines.
func (a *Advisor) AdviseRange(q Query, dates []time.Time) models.BookingAdvisory {
	f := newFindings()
	for _, d := range dates {
		day := q
		day.Date = d
		a.collect(day, f)
	}
	return f.advisory()
}

func (a *Advisor) collect(q Query, f *findings) {
	code, ok := a.resolver.CountryFor(q.Destination)
	if !ok {
		return
	}
	country, ok := a.knowledge.Country(code)
	if !ok {
		return
	}
	f.country = code

	if !q.Date.IsZero() {
		a.holidays(country, q.Date, f)
		a.events(country, q.Destination, q.Date, f)
		a.crowds(q, f)
	}

	if q.GroupSize >= GroupBookingThreshold {
		f.recommend(fmt.Sprintf("Book group tickets in advance for your party of %d; many venues offer group rates and guaranteed entry slots.", q.GroupSize))
	}
}

func (a *Advisor) holidays(country destinations.Country, date time.Time, f *findings) {
	for _, h := range country.Holidays {
		if !matchesDate(h.Dates, h.Period, date) {
			continue
		}
		when := h.Period
		if when == "" {
			when = date.Format("Jan 2")
		}
		level := crowdLevel(h.Crowds)

		if busy(level) || h.Closures != "" {
			text := fmt.Sprintf("%s (%s) in %s: expect %s crowds", h.Name, when, country.Name, levelOrDefault(level))
			if h.Closures != "" {
				text += fmt.Sprintf("; %s may be closed", h.Closures)
			}
			f.warn(text+".", level == "extreme")
			f.recommend(fmt.Sprintf("Reserve accommodation and timed-entry tickets early around %s.", h.Name))
		} else {
			f.opportunity(fmt.Sprintf("%s (%s) in %s: a local celebration worth planning around.", h.Name, when, country.Name))
		}

		if len(h.Events) > 0 {
			f.opportunity(fmt.Sprintf("During %s look out for %s.", h.Name, strings.Join(h.Events, " and ")))
		}
	}
}

func (a *Advisor) events(country destinations.Country, destination string, date time.Time, f *findings) {
	dest := strings.ToLower(destination)
	for _, e := range country.Events {
		if e.Location != "" && !strings.Contains(dest, strings.ToLower(e.Location)) {
			continue
		}
		if !matchesDate(nil, e.Period, date) {
			continue
		}
		level := crowdLevel(e.Crowds)
		text := fmt.Sprintf("%s (%s)", e.Name, e.Period)
		if e.Impact != "" {
			text += ": " + e.Impact
		}
		if busy(level) {
			f.warn(fmt.Sprintf("%s; expect %s crowds.", text, level), level == "extreme")
		} else {
			f.opportunity(text + ".")
		}
	}
}

func (a *Advisor) crowds(q Query, f *findings) {
	if q.ActivityType == "" || q.TimeSlot == "" {
		return
	}
	profile, ok := a.knowledge.CrowdProfile(normalizeCategory(q.ActivityType))
	if !ok {
		return
	}
	slot, err := parseSlot(q.TimeSlot)
	if err != nil {
		return
	}

	label := profile.Label
	if label == "" {
		label = q.ActivityType
	}
	optimal := parseWindows(profile.Optimal)

	for _, peak := range parseWindows(profile.Peak) {
		if !slot.overlaps(peak) {
			continue
		}
		score := 1.0
		day := "weekday"
		if isWeekend(q.Date) {
			score *= WeekendMultiplier
			day = "weekend"
		}
		text := fmt.Sprintf("Peak hours for %s are %s and a %s visit at %s will be crowded", label, peak, day, q.TimeSlot)
		if len(optimal) > 0 {
			text += fmt.Sprintf("; go at %s instead", joinWindows(optimal))
		}
		f.warn(text+".", score >= extremeCrowdScore)
		return
	}

	for _, w := range optimal {
		if slot.start >= w.start && slot.start < w.end {
			f.opportunity(fmt.Sprintf("%s is an optimal time for %s with short queues.", q.TimeSlot, label))
			return
		}
	}

	if len(optimal) > 0 {
		f.recommend(fmt.Sprintf("For the shortest queues at %s, aim for %s.", label, joinWindows(optimal)))
	}
}

func (f *findings) advisory() models.BookingAdvisory {
	out := models.BookingAdvisory{
		Country:         f.country,
		Warnings:        make([]string, 0, len(f.warnings)),
		Opportunities:   append([]string{}, f.opportunities...),
		Recommendations: append([]string{}, f.recommendations...),
		Priority:        models.PriorityLow,
		Urgency:         models.UrgencyNormal,
	}

	extreme := false
	for _, w := range f.warnings {
		out.Warnings = append(out.Warnings, w.text)
		extreme = extreme || w.extreme
	}

	switch {
	case len(out.Warnings) >= 2:
		out.Priority = models.PriorityHigh
	case len(out.Warnings) == 1:
		out.Priority = models.PriorityMedium
	}

	switch {
	case extreme:
		out.Urgency = models.UrgencyUrgent
	case len(out.Warnings) > 0:
		out.Urgency = models.UrgencyModerate
	}
	return out
}

func crowdLevel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func busy(level string) bool {
	return level == "high" || level == "extreme"
}

func levelOrDefault(level string) string {
	if level == "" {
		return "normal"
	}
	return level
}

func joinWindows(ws []window) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, " or ")
}
