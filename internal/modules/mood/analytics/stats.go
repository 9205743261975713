// Package analytics computes engagement statistics from a user's mood entries.
// Every function is pure: it reads its arguments and nothing else, so it is safe
// for concurrent use and never fails. Missing data degrades to neutral defaults.
package analytics

import (
	"math"
	"sort"
	"time"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

const (
	NeutralMood = 50

	ConsistencyWindowDays = 30
	TrendWindowSize       = 7
	// trend needs a mood swing larger than this many points to count as up or down
	trendThreshold = 5.0
)

type Entry struct {
	Timestamp time.Time
	Mood      int
	Note      string
}

type Snapshot struct {
	TotalEntries      int     `json:"total_entries"`
	AverageMood       float64 `json:"average_mood"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	PerfectMonth      bool    `json:"perfect_month"`
	Consistency       int     `json:"consistency"`
	MoodTrend         Trend   `json:"mood_trend"`
	TrendPercentage   int     `json:"trend_percentage"`
	Last7DaysAverage  float64 `json:"last7_days_average"`
	Last30DaysAverage float64 `json:"last30_days_average"`
	Last7DaysCount    int     `json:"last7_days_count"`
	Last30DaysCount   int     `json:"last30_days_count"`
	HasTodayEntry     bool    `json:"has_today_entry"`
	TodayMood         *int    `json:"today_mood"`
}

// EmptySnapshot is what a user with no entries sees.
func EmptySnapshot() Snapshot {
	return Snapshot{
		AverageMood:       NeutralMood,
		MoodTrend:         TrendStable,
		Last7DaysAverage:  NeutralMood,
		Last30DaysAverage: NeutralMood,
	}
}

// CalculateAllStats builds the full snapshot. Calendar days are taken in loc; a nil loc means UTC.
func CalculateAllStats(entries []Entry, now time.Time, loc *time.Location) Snapshot {
	if loc == nil {
		loc = time.UTC
	}
	if len(entries) == 0 {
		return EmptySnapshot()
	}

	trend, trendPct := MoodTrend(entries)
	avg7, count7 := PeriodAverage(entries, now, loc, 7)
	avg30, count30 := PeriodAverage(entries, now, loc, 30)
	todayMood, hasToday := TodayMood(entries, now, loc)

	snap := Snapshot{
		TotalEntries:      len(entries),
		AverageMood:       round1(average(entries)),
		CurrentStreak:     CurrentStreak(entries, now, loc),
		LongestStreak:     LongestStreak(entries, loc),
		PerfectMonth:      PerfectMonth(entries, now, loc),
		Consistency:       Consistency(entries, now, loc, ConsistencyWindowDays),
		MoodTrend:         trend,
		TrendPercentage:   trendPct,
		Last7DaysAverage:  avg7,
		Last30DaysAverage: avg30,
		Last7DaysCount:    count7,
		Last30DaysCount:   count30,
		HasTodayEntry:     hasToday,
	}
	if hasToday {
		snap.TodayMood = &todayMood
	}
	return snap
}

// MoodTrend compares the newest TrendWindowSize entries with the ones right before them.
// A stable trend always reports 0 percent.
func MoodTrend(entries []Entry) (Trend, int) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	recent := sorted[:min(TrendWindowSize, len(sorted))]
	older := sorted[len(recent):min(2*TrendWindowSize, len(sorted))]
	if len(recent) == 0 || len(older) == 0 {
		return TrendStable, 0
	}

	recentAvg, olderAvg := average(recent), average(older)
	diff := recentAvg - olderAvg

	var trend Trend
	switch {
	case diff > trendThreshold:
		trend = TrendUp
	case diff < -trendThreshold:
		trend = TrendDown
	default:
		return TrendStable, 0
	}

	if olderAvg == 0 {
		return trend, 0
	}
	return trend, int(math.Round(diff / olderAvg * 100))
}

// PeriodAverage averages entries whose calendar day is on or after today minus days.
func PeriodAverage(entries []Entry, now time.Time, loc *time.Location, days int) (float64, int) {
	cutoff := dayOf(now, loc) - day(days)

	sum, count := 0, 0
	for _, e := range entries {
		if dayOf(e.Timestamp, loc) >= cutoff {
			sum += clampMood(e.Mood)
			count++
		}
	}
	if count == 0 {
		return NeutralMood, 0
	}
	return round1(float64(sum) / float64(count)), count
}

// TodayMood returns the mood of the first entry, in input order, dated today.
func TodayMood(entries []Entry, now time.Time, loc *time.Location) (int, bool) {
	today := dayOf(now, loc)
	for _, e := range entries {
		if dayOf(e.Timestamp, loc) == today {
			return clampMood(e.Mood), true
		}
	}
	return 0, false
}

func average(entries []Entry) float64 {
	if len(entries) == 0 {
		return NeutralMood
	}
	sum := 0
	for _, e := range entries {
		sum += clampMood(e.Mood)
	}
	return float64(sum) / float64(len(entries))
}

func clampMood(m int) int {
	if m < 0 {
		return 0
	}
	if m > 100 {
		return 100
	}
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
