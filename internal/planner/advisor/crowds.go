// internal/planner/advisor/crowds.go
package advisor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekendMultiplier scales peak crowding on Saturdays and Sundays.
const WeekendMultiplier = 1.5

// extremeCrowdScore is the crowd score at which a peak warning counts as extreme.
const extremeCrowdScore = 1.5

var namedSlots = map[string]window{
	"morning":   {8 * 60, 12 * 60},
	"afternoon": {12 * 60, 17 * 60},
	"evening":   {17 * 60, 21 * 60},
	"night":     {21 * 60, 24 * 60},
}

// categoryAliases is checked in order; the first substring hit wins.
var categoryAliases = []struct {
	alias    string
	category string
}{
	{"museum", "museum"},
	{"gallery", "museum"},
	{"attraction", "attraction"},
	{"sightseeing", "attraction"},
	{"landmark", "attraction"},
	{"monument", "attraction"},
	{"temple", "attraction"},
	{"restaurant", "restaurant"},
	{"dining", "restaurant"},
	{"food", "restaurant"},
	{"beach", "beach"},
	{"shopping", "shopping"},
	{"market", "shopping"},
	{"tour", "tour"},
	{"excursion", "tour"},
	{"hiking", "outdoor"},
	{"outdoor", "outdoor"},
	{"park", "outdoor"},
	{"viewpoint", "outdoor"},
	{"nightlife", "nightlife"},
	{"bar", "nightlife"},
	{"club", "nightlife"},
}

// window is a half-open range of minutes since midnight.
type window struct {
	start, end int
}

func (w window) overlaps(o window) bool {
	return w.start < o.end && o.start < w.end
}

func (w window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.start/60, w.start%60, w.end/60, w.end%60)
}

// normalizeCategory maps free-text activity types onto a crowd profile key.
func normalizeCategory(activity string) string {
	a := strings.ToLower(strings.TrimSpace(activity))
	for _, ca := range categoryAliases {
		if strings.Contains(a, ca.alias) {
			return ca.category
		}
	}
	return a
}

// parseSlot accepts morning, afternoon, evening, night or HH:MM (a one hour slot).
func parseSlot(slot string) (window, error) {
	s := strings.ToLower(strings.TrimSpace(slot))
	if w, ok := namedSlots[s]; ok {
		return w, nil
	}
	m, err := parseClock(s)
	if err != nil {
		return window{}, fmt.Errorf("time slot %q: %w", slot, err)
	}
	return window{m, m + 60}, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("bad hour %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", mm)
	}
	return h*60 + m, nil
}

func parseWindows(specs []string) []window {
	out := make([]window, 0, len(specs))
	for _, s := range specs {
		from, to, ok := strings.Cut(s, "-")
		if !ok {
			continue
		}
		start, err1 := parseClock(strings.TrimSpace(from))
		end, err2 := parseClock(strings.TrimSpace(to))
		if err1 != nil || err2 != nil || end <= start {
			continue
		}
		out = append(out, window{start, end})
	}
	return out
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
