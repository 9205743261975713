package analytics

import (
	"sort"
	"time"
)

// day is a calendar date in the reference location, counted in days since the Unix epoch.
// Counting on a UTC-anchored date keeps the arithmetic free of DST gaps.
type day int

func dayOf(t time.Time, loc *time.Location) day {
	y, m, d := t.In(loc).Date()
	return day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// distinctDaysDesc returns each calendar day with at least one entry, newest first.
func distinctDaysDesc(entries []Entry, loc *time.Location) []day {
	seen := make(map[day]struct{}, len(entries))
	days := make([]day, 0, len(entries))
	for _, e := range entries {
		d := dayOf(e.Timestamp, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
	return days
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
