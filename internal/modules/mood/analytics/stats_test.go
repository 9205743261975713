package analytics

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func at(daysAgo int, mood int) Entry {
	return Entry{Timestamp: fixedNow.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour), Mood: mood}
}

func TestCalculateAllStats_Empty(t *testing.T) {
	got := CalculateAllStats(nil, fixedNow, time.UTC)
	want := EmptySnapshot()
	if got != want {
		t.Fatalf("empty snapshot = %+v, want %+v", got, want)
	}
	if got.AverageMood != 50 || got.CurrentStreak != 0 || got.LongestStreak != 0 || got.Consistency != 0 || got.MoodTrend != TrendStable {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestCurrentStreak(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    int
	}{
		{"three consecutive ending today", []Entry{at(0, 60), at(1, 10), at(2, 90)}, 3},
		{"gap at yesterday", []Entry{at(0, 60), at(2, 60)}, 1},
		{"ending yesterday", []Entry{at(1, 60), at(2, 60), at(3, 60)}, 3},
		{"last entry two days ago", []Entry{at(2, 60), at(3, 60)}, 0},
		{"unsorted input", []Entry{at(2, 60), at(0, 60), at(1, 60)}, 3},
		{"same-day duplicates", []Entry{at(0, 60), at(0, 70), at(1, 60)}, 2},
		{"single entry today", []Entry{at(0, 60)}, 1},
	}
	for _, tc := range cases {
		if got := CurrentStreak(tc.entries, fixedNow, time.UTC); got != tc.want {
			t.Fatalf("%s: streak = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestCurrentStreak_UsesReferenceTimezone(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	// 18:00 UTC on the 9th is already the 10th in WIB.
	now := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Timestamp: time.Date(2026, 3, 9, 17, 30, 0, 0, time.UTC), Mood: 50}, // 10th WIB
		{Timestamp: time.Date(2026, 3, 9, 2, 0, 0, 0, time.UTC), Mood: 50},   // 9th WIB
	}
	if got := CurrentStreak(entries, now, wib); got != 2 {
		t.Fatalf("streak in WIB = %d, want 2", got)
	}
	if got := CurrentStreak(entries, now, time.UTC); got != 1 {
		t.Fatalf("streak in UTC = %d, want 1", got)
	}
}

func TestLongestStreak(t *testing.T) {
	entries := []Entry{at(0, 50), at(5, 50), at(6, 50), at(7, 50), at(8, 50), at(20, 50), at(21, 50)}
	if got := LongestStreak(entries, time.UTC); got != 4 {
		t.Fatalf("longest = %d, want 4", got)
	}
	if got := LongestStreak([]Entry{at(40, 50)}, time.UTC); got != 1 {
		t.Fatalf("single entry longest = %d, want 1", got)
	}
}

func TestPerfectMonth(t *testing.T) {
	now := time.Date(2026, 2, 28, 20, 0, 0, 0, time.UTC)
	var entries []Entry
	for d := 1; d <= 28; d++ {
		entries = append(entries, Entry{Timestamp: time.Date(2026, 2, d, 9, 0, 0, 0, time.UTC), Mood: 70})
	}
	if !PerfectMonth(entries, now, time.UTC) {
		t.Fatalf("expected a perfect February")
	}
	if PerfectMonth(entries[1:], now, time.UTC) {
		t.Fatalf("missing the 1st must not be perfect")
	}
	if PerfectMonth(entries, fixedNow, time.UTC) {
		t.Fatalf("February entries must not count for March")
	}
}

func TestConsistency(t *testing.T) {
	var entries []Entry
	for i := 0; i < 15; i++ {
		entries = append(entries, at(i, 50))
	}
	entries = append(entries, at(0, 80), at(45, 50))
	if got := Consistency(entries, fixedNow, time.UTC, 30); got != 50 {
		t.Fatalf("consistency = %d, want 50", got)
	}
	if got := Consistency([]Entry{at(29, 50)}, fixedNow, time.UTC, 30); got != 3 {
		t.Fatalf("oldest day of window: consistency = %d, want 3", got)
	}
	if got := Consistency([]Entry{at(30, 50)}, fixedNow, time.UTC, 30); got != 0 {
		t.Fatalf("outside window: consistency = %d, want 0", got)
	}
}

func TestMoodTrend(t *testing.T) {
	var up []Entry
	for i := 0; i < 14; i++ {
		mood := 40
		if i < 7 {
			mood = 80
		}
		up = append(up, at(i, mood))
	}
	trend, pct := MoodTrend(up)
	if trend != TrendUp || pct != 100 {
		t.Fatalf("trend = %s %d%%, want up 100%%", trend, pct)
	}

	var down []Entry
	for i := 0; i < 14; i++ {
		mood := 80
		if i < 7 {
			mood = 60
		}
		down = append(down, at(i, mood))
	}
	trend, pct = MoodTrend(down)
	if trend != TrendDown || pct != -25 {
		t.Fatalf("trend = %s %d%%, want down -25%%", trend, pct)
	}

	// A 4 point swing is noise.
	var flat []Entry
	for i := 0; i < 7; i++ {
		flat = append(flat, at(i, 54))
	}
	flat = append(flat, at(7, 50))
	if trend, pct := MoodTrend(flat); trend != TrendStable || pct != 0 {
		t.Fatalf("trend = %s %d%%, want stable 0%%", trend, pct)
	}

	// Only a recent window: nothing to compare against.
	if trend, pct := MoodTrend([]Entry{at(0, 100)}); trend != TrendStable || pct != 0 {
		t.Fatalf("single entry trend = %s %d%%", trend, pct)
	}

	// Older window averaging zero still classifies but reports 0%.
	var zero []Entry
	for i := 0; i < 7; i++ {
		zero = append(zero, at(i, 60))
	}
	zero = append(zero, at(7, 0))
	if trend, pct := MoodTrend(zero); trend != TrendUp || pct != 0 {
		t.Fatalf("zero baseline trend = %s %d%%, want up 0%%", trend, pct)
	}
}

func TestPeriodAverage(t *testing.T) {
	entries := []Entry{at(0, 90), at(7, 70), at(8, 10), at(30, 50), at(31, 100)}

	avg, count := PeriodAverage(entries, fixedNow, time.UTC, 7)
	if count != 2 || avg != 80 {
		t.Fatalf("7 day window = %v over %d, want 80 over 2", avg, count)
	}
	avg, count = PeriodAverage(entries, fixedNow, time.UTC, 30)
	if count != 4 || avg != 55 {
		t.Fatalf("30 day window = %v over %d, want 55 over 4", avg, count)
	}
	avg, count = PeriodAverage(nil, fixedNow, time.UTC, 7)
	if count != 0 || avg != NeutralMood {
		t.Fatalf("empty window = %v over %d", avg, count)
	}
}

func TestTodayMood_FirstInInputOrder(t *testing.T) {
	entries := []Entry{at(1, 10), at(0, 33), at(0, 99)}
	mood, ok := TodayMood(entries, fixedNow, time.UTC)
	if !ok || mood != 33 {
		t.Fatalf("today mood = %d,%v want 33,true", mood, ok)
	}
	if _, ok := TodayMood(entries[:1], fixedNow, time.UTC); ok {
		t.Fatalf("no entry today expected")
	}
}

func TestCalculateAllStats_Full(t *testing.T) {
	entries := []Entry{at(0, 80), at(1, 60), at(2, 70), at(10, 30)}
	snap := CalculateAllStats(entries, fixedNow, time.UTC)

	if snap.TotalEntries != 4 {
		t.Fatalf("total = %d", snap.TotalEntries)
	}
	if snap.AverageMood != 60 {
		t.Fatalf("average = %v, want 60", snap.AverageMood)
	}
	if snap.CurrentStreak != 3 || snap.LongestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", snap.CurrentStreak, snap.LongestStreak)
	}
	if snap.Consistency != 13 {
		t.Fatalf("consistency = %d, want 13", snap.Consistency)
	}
	if snap.Last7DaysCount != 3 || snap.Last7DaysAverage != 70 {
		t.Fatalf("last 7 = %v over %d", snap.Last7DaysAverage, snap.Last7DaysCount)
	}
	if snap.Last30DaysCount != 4 {
		t.Fatalf("last 30 count = %d", snap.Last30DaysCount)
	}
	if !snap.HasTodayEntry || snap.TodayMood == nil || *snap.TodayMood != 80 {
		t.Fatalf("today = %v %v", snap.HasTodayEntry, snap.TodayMood)
	}
	if snap.PerfectMonth {
		t.Fatalf("perfect month not expected")
	}
}

func TestCalculateAllStats_DoesNotMutateInput(t *testing.T) {
	entries := []Entry{at(3, 10), at(0, 20), at(1, 30)}
	before := make([]Entry, len(entries))
	copy(before, entries)

	CalculateAllStats(entries, fixedNow, time.UTC)

	for i := range entries {
		if !entries[i].Timestamp.Equal(before[i].Timestamp) || entries[i].Mood != before[i].Mood {
			t.Fatalf("input reordered or changed at %d", i)
		}
	}
}
