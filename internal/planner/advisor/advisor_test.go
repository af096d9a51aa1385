// internal/planner/advisor/advisor_test.go
package advisor

import (
	"testing"
	"time"

	"itinerary-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestAdvise_NationalHoliday(t *testing.T) {
	a := New(nil, nil)
	adv := a.Advise(Query{Destination: "Paris, France", Date: day(t, "2026-07-14")})

	assert.Equal(t, "FR", adv.Country)
	require.Len(t, adv.Warnings, 2)
	assert.Contains(t, adv.Warnings[0], "Bastille Day")
	assert.Contains(t, adv.Warnings[1], "French summer holidays")
	assert.NotEmpty(t, adv.Opportunities)
	assert.NotEmpty(t, adv.Recommendations)
	assert.Equal(t, models.PriorityHigh, adv.Priority)
	assert.Equal(t, models.UrgencyUrgent, adv.Urgency)
}

func TestAdvise_UnknownDestination(t *testing.T) {
	adv := New(nil, nil).Advise(Query{Destination: "Atlantis", Date: day(t, "2026-07-14"), GroupSize: 12})

	assert.True(t, adv.Empty())
	assert.Empty(t, adv.Country)
	assert.Equal(t, models.PriorityLow, adv.Priority)
	assert.Equal(t, models.UrgencyNormal, adv.Urgency)
	assert.NotNil(t, adv.Warnings)
}

func TestAdvise_Cases(t *testing.T) {
	tests := []struct {
		name         string
		query        Query
		wantWarnings int
		wantOpps     bool
		wantRecs     bool
		priority     models.Priority
		urgency      models.Urgency
	}{
		{
			name:         "closures without heavy crowds",
			query:        Query{Destination: "Paris", Date: day(t, "2026-12-25")},
			wantWarnings: 1,
			wantRecs:     true,
			priority:     models.PriorityMedium,
			urgency:      models.UrgencyModerate,
		},
		{
			name:     "quiet holiday is an opportunity",
			query:    Query{Destination: "Rome", Date: day(t, "2026-04-25")},
			wantOpps: true,
			priority: models.PriorityLow,
			urgency:  models.UrgencyNormal,
		},
		{
			name:     "city event matches its location",
			query:    Query{Destination: "Paris", Date: day(t, "2026-10-04")},
			wantOpps: true,
			priority: models.PriorityLow,
			urgency:  models.UrgencyNormal,
		},
		{
			name:     "city event skipped elsewhere",
			query:    Query{Destination: "Lyon", Date: day(t, "2026-10-04")},
			priority: models.PriorityLow,
			urgency:  models.UrgencyNormal,
		},
		{
			name:         "cross-month period",
			query:        Query{Destination: "Tokyo", Date: day(t, "2026-05-03")},
			wantWarnings: 1,
			wantRecs:     true,
			priority:     models.PriorityMedium,
			urgency:      models.UrgencyUrgent,
		},
		{
			name:         "period wrapping the year",
			query:        Query{Destination: "Kyoto", Date: day(t, "2027-01-01")},
			wantWarnings: 1,
			wantRecs:     true,
			priority:     models.PriorityMedium,
			urgency:      models.UrgencyModerate,
		},
		{
			name:     "large group",
			query:    Query{Destination: "Barcelona", Date: day(t, "2026-10-13"), GroupSize: 8},
			wantRecs: true,
			priority: models.PriorityLow,
			urgency:  models.UrgencyNormal,
		},
	}

	a := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := a.Advise(tt.query)
			assert.Len(t, adv.Warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantOpps, len(adv.Opportunities) > 0, "opportunities: %v", adv.Opportunities)
			assert.Equal(t, tt.wantRecs, len(adv.Recommendations) > 0, "recommendations: %v", adv.Recommendations)
			assert.Equal(t, tt.priority, adv.Priority)
			assert.Equal(t, tt.urgency, adv.Urgency)
		})
	}
}

func TestAdvise_Crowds(t *testing.T) {
	a := New(nil, nil)

	weekday := a.Advise(Query{Destination: "Paris", ActivityType: "museum", Date: day(t, "2026-10-13"), TimeSlot: "afternoon"})
	require.Len(t, weekday.Warnings, 1)
	assert.Contains(t, weekday.Warnings[0], "weekday")
	assert.Equal(t, models.UrgencyModerate, weekday.Urgency)

	weekend := a.Advise(Query{Destination: "Paris", ActivityType: "Art museums", Date: day(t, "2026-10-17"), TimeSlot: "13:00"})
	require.Len(t, weekend.Warnings, 1)
	assert.Contains(t, weekend.Warnings[0], "weekend")
	assert.Equal(t, models.UrgencyUrgent, weekend.Urgency)

	optimal := a.Advise(Query{Destination: "Paris", ActivityType: "museum", Date: day(t, "2026-10-13"), TimeSlot: "09:15"})
	assert.Empty(t, optimal.Warnings)
	require.Len(t, optimal.Opportunities, 1)
	assert.Contains(t, optimal.Opportunities[0], "optimal")

	offPeak := a.Advise(Query{Destination: "Paris", ActivityType: "museum", Date: day(t, "2026-10-13"), TimeSlot: "17:30"})
	assert.Empty(t, offPeak.Warnings)
	require.Len(t, offPeak.Recommendations, 1)
	assert.Contains(t, offPeak.Recommendations[0], "09:00-10:00")

	unknownSlot := a.Advise(Query{Destination: "Paris", ActivityType: "museum", Date: day(t, "2026-10-13"), TimeSlot: "whenever"})
	assert.True(t, unknownSlot.Empty())
}

func TestAdviseRange_Dedups(t *testing.T) {
	a := New(nil, nil)
	dates := []time.Time{day(t, "2026-05-01"), day(t, "2026-05-02"), day(t, "2026-05-03")}

	adv := a.AdviseRange(Query{Destination: "Tokyo"}, dates)
	assert.Len(t, adv.Warnings, 1)
	assert.Equal(t, models.UrgencyUrgent, adv.Urgency)

	single := a.Advise(Query{Destination: "Tokyo", Date: dates[0]})
	assert.Equal(t, single.Warnings, adv.Warnings)
}

type staticResolver map[string]string

func (s staticResolver) CountryFor(destination string) (string, bool) {
	code, ok := s[destination]
	return code, ok
}

func TestAdvise_ResolverSeam(t *testing.T) {
	a := New(staticResolver{"Somewhere in Provence": "FR"}, nil)
	adv := a.Advise(Query{Destination: "Somewhere in Provence", Date: day(t, "2026-07-14")})
	assert.Equal(t, "FR", adv.Country)
	assert.NotEmpty(t, adv.Warnings)

	adv = a.Advise(Query{Destination: "Paris", Date: day(t, "2026-07-14")})
	assert.True(t, adv.Empty())
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"Sep-Oct", Period{time.September, 1, time.October, 31}},
		{"Jul", Period{time.July, 1, time.July, 31}},
		{"Jun 21", Period{time.June, 21, time.June, 21}},
		{"Apr 13-15", Period{time.April, 13, time.April, 15}},
		{"Apr 29 - May 5", Period{time.April, 29, time.May, 5}},
		{"Apr 29 – May 5", Period{time.April, 29, time.May, 5}},
		{"Dec 29 - Jan 3", Period{time.December, 29, time.January, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "Smarch 3", "13-15", "Apr 40", "Apr x"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriod_Contains(t *testing.T) {
	wrap := Period{time.December, 29, time.January, 3}
	assert.True(t, wrap.Contains(day(t, "2026-12-31")))
	assert.True(t, wrap.Contains(day(t, "2027-01-03")))
	assert.False(t, wrap.Contains(day(t, "2027-01-04")))

	p := Period{time.April, 13, time.April, 15}
	assert.True(t, p.Contains(day(t, "2026-04-13")))
	assert.False(t, p.Contains(day(t, "2026-04-16")))
}

func TestParseSlot(t *testing.T) {
	w, err := parseSlot("Morning")
	require.NoError(t, err)
	assert.Equal(t, window{480, 720}, w)

	w, err = parseSlot("18:30")
	require.NoError(t, err)
	assert.Equal(t, window{1110, 1170}, w)

	_, err = parseSlot("25:00")
	assert.Error(t, err)
}
