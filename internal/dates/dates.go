package dates

import (
	"fmt"
	"sort"
	"time"

	"lunchbox-orders/internal/models"
)

// Layout is the wire format for all delivery dates.
const Layout = "2006-01-02"

var dayLabels = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// Format renders a date as YYYY-MM-DD in local time.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses a YYYY-MM-DD date string in local time.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DayOfWeek maps a time to its Korean weekday label.
func DayOfWeek(t time.Time) string {
	return dayLabels[t.Weekday()]
}

// DayOfWeekFromDate maps a YYYY-MM-DD string to its Korean weekday label,
// or "" when the string does not parse.
func DayOfWeekFromDate(s string) string {
	t, err := Parse(s)
	if err != nil {
		return ""
	}
	return DayOfWeek(t)
}

// ThisMonday returns the Monday of the given day's week, at midnight.
// Sunday counts as the last day of the previous week's span.
func ThisMonday(today time.Time) time.Time {
	today = Midnight(today)
	days := (int(today.Weekday()) + 6) % 7
	return today.AddDate(0, 0, -days)
}

// NextMonday returns the Monday of the week after the given day, at midnight.
func NextMonday(today time.Time) time.Time {
	today = Midnight(today)
	days := (8 - int(today.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// NextWeekDates returns next week's Monday through Friday.
func NextWeekDates(today time.Time) []time.Time {
	monday := NextMonday(today)
	week := make([]time.Time, 5)
	for i := range week {
		week[i] = monday.AddDate(0, 0, i)
	}
	return week
}

// Midnight truncates a time to the start of its day in local time.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeeklyOrderDays collects the weekday labels recurring orders deliver on.
// One-off orders and unparseable dates contribute nothing.
func WeeklyOrderDays(orders []models.Order) map[string]bool {
	days := make(map[string]bool)
	for _, order := range orders {
		if !order.IsWeeklyOrder {
			continue
		}
		for _, entry := range order.Settlements {
			if day := DayOfWeekFromDate(entry.Date); day != "" {
				days[day] = true
			}
		}
	}
	return days
}

// WeeklyRecurringDates expands each selected date into weekly occurrences of
// the same weekday for weeks 0 through weeksAhead. Unparseable inputs are
// skipped. The result is de-duplicated and sorted ascending.
func WeeklyRecurringDates(selected []string, weeksAhead int) []string {
	if len(selected) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, s := range selected {
		base, err := Parse(s)
		if err != nil {
			continue
		}
		for week := 0; week <= weeksAhead; week++ {
			seen[Format(base.AddDate(0, 0, week*7))] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
