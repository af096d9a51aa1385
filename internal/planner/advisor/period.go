// internal/planner/advisor/period.go
package advisor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Period is a recurring yearly range of month/day pairs. It may wrap the year end.
type Period struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// ParsePeriod accepts "Sep-Oct", "Jul", "Jun 21", "Apr 13-15" and "Apr 29 - May 5".
// En and em dashes are treated as hyphens.
func ParsePeriod(s string) (Period, error) {
	norm := strings.NewReplacer("–", "-", "—", "-").Replace(strings.TrimSpace(s))
	if norm == "" {
		return Period{}, fmt.Errorf("empty period")
	}

	parts := strings.SplitN(norm, "-", 2)
	startMonth, startDay, err := parseMonthDay(parts[0], 0)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %w", s, err)
	}

	if len(parts) == 1 {
		if startDay == 0 {
			return Period{startMonth, 1, startMonth, 31}, nil
		}
		return Period{startMonth, startDay, startMonth, startDay}, nil
	}

	endMonth, endDay, err := parseMonthDay(parts[1], startMonth)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %w", s, err)
	}
	if startDay == 0 {
		startDay = 1
	}
	if endDay == 0 {
		endDay = 31
	}
	return Period{startMonth, startDay, endMonth, endDay}, nil
}

// parseMonthDay parses "Apr", "Apr 13", or a bare day "15" that inherits month.
func parseMonthDay(s string, month time.Month) (time.Month, int, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		if day, err := strconv.Atoi(fields[0]); err == nil {
			if month == 0 {
				return 0, 0, fmt.Errorf("day %d without month", day)
			}
			return month, day, validDay(day)
		}
		m, err := parseMonth(fields[0])
		return m, 0, err
	case 2:
		m, err := parseMonth(fields[0])
		if err != nil {
			return 0, 0, err
		}
		day, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, fmt.Errorf("bad day %q", fields[1])
		}
		return m, day, validDay(day)
	default:
		return 0, 0, fmt.Errorf("cannot parse %q", s)
	}
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("bad month %q", s)
	}
	if m, ok := months[strings.ToLower(s[:3])]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("bad month %q", s)
}

func validDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("day %d out of range", day)
	}
	return nil
}

func ordinal(m time.Month, day int) int {
	return int(m)*100 + day
}

// Contains reports whether t's month and day fall inside the period.
func (p Period) Contains(t time.Time) bool {
	key := ordinal(t.Month(), t.Day())
	start := ordinal(p.StartMonth, p.StartDay)
	end := ordinal(p.EndMonth, p.EndDay)
	if start <= end {
		return key >= start && key <= end
	}
	return key >= start || key <= end
}

// matchesDate checks exact MM-DD dates first, then the period.
func matchesDate(dates []string, period string, t time.Time) bool {
	md := t.Format("01-02")
	for _, d := range dates {
		if strings.TrimSpace(d) == md {
			return true
		}
	}
	if period == "" {
		return false
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return false
	}
	return p.Contains(t)
}
