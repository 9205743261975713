package analytics

import (
	"math"
	"time"
)

// CurrentStreak counts consecutive calendar days with an entry, ending today or yesterday.
// A last entry older than yesterday means the chain is broken.
func CurrentStreak(entries []Entry, now time.Time, loc *time.Location) int {
	days := distinctDaysDesc(entries, loc)
	today := dayOf(now, loc)

	// entries dated after today do not belong to any streak yet
	for len(days) > 0 && days[0] > today {
		days = days[1:]
	}
	if len(days) == 0 {
		return 0
	}

	gap := int(today - days[0])
	if gap > 1 {
		return 0
	}

	streak := 0
	for i, d := range days {
		expected := today - day(i+gap)
		if d != expected {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive calendar days ever recorded.
func LongestStreak(entries []Entry, loc *time.Location) int {
	days := distinctDaysDesc(entries, loc)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// PerfectMonth reports whether every day of the current calendar month has an entry.
func PerfectMonth(entries []Entry, now time.Time, loc *time.Location) bool {
	local := now.In(loc)
	year, month := local.Year(), local.Month()

	covered := make(map[int]struct{})
	for _, e := range entries {
		t := e.Timestamp.In(loc)
		if t.Year() == year && t.Month() == month {
			covered[t.Day()] = struct{}{}
		}
	}
	return len(covered) >= daysInMonth(year, month)
}

// Consistency is the share of the trailing window (today included) with at least one
// entry, as a whole percentage.
func Consistency(entries []Entry, now time.Time, loc *time.Location, windowDays int) int {
	if windowDays <= 0 {
		return 0
	}
	today := dayOf(now, loc)
	first := today - day(windowDays-1)

	covered := 0
	for _, d := range distinctDaysDesc(entries, loc) {
		if d <= today && d >= first {
			covered++
		}
	}
	return int(math.Round(float64(covered) / float64(windowDays) * 100))
}
