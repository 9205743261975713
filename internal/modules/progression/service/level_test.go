package service

import "testing"

func TestCalculateLevel_Boundaries(t *testing.T) {
	cases := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{4500, 10},
		{-50, 1},
	}
	for _, tc := range cases {
		if got := CalculateLevel(tc.totalXP); got != tc.want {
			t.Fatalf("CalculateLevel(%d) = %d, want %d", tc.totalXP, got, tc.want)
		}
	}
}

func TestCalculateLevel_MonotonicAndAtLeastOne(t *testing.T) {
	prev := CalculateLevel(0)
	for xp := 0; xp <= 20000; xp += 7 {
		level := CalculateLevel(xp)
		if level < 1 {
			t.Fatalf("level %d below 1 at xp=%d", level, xp)
		}
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestCumulativeXPForLevel_MatchesClosedForm(t *testing.T) {
	for level := 1; level <= 50; level++ {
		want := 50 * level * (level - 1)
		if got := CumulativeXPForLevel(level); got != want {
			t.Fatalf("CumulativeXPForLevel(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestGetLevelInfo_CurrentXPPlusLowerLevelsEqualsTotal(t *testing.T) {
	for xp := 0; xp <= 10000; xp += 13 {
		info := GetLevelInfo(xp)
		if info.CurrentXP+CumulativeXPForLevel(info.Level) != xp {
			t.Fatalf("xp=%d: current %d + cumulative(%d) != total", xp, info.CurrentXP, info.Level)
		}
		if info.XPToNextLevel != 100*info.Level {
			t.Fatalf("xp=%d: xp to next %d, want %d", xp, info.XPToNextLevel, 100*info.Level)
		}
	}
}

func TestGetLevelInfo_Progress(t *testing.T) {
	info := GetLevelInfo(150) // level 2, 50 of 200
	if info.Level != 2 || info.CurrentXP != 50 || info.XPToNextLevel != 200 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Progress != 25 {
		t.Fatalf("progress = %v, want 25", info.Progress)
	}

	info = GetLevelInfo(101) // 1 of 200
	if info.Progress != 0.5 {
		t.Fatalf("progress = %v, want 0.5", info.Progress)
	}
}

func TestGameSource_Mapping(t *testing.T) {
	cases := []struct {
		game Game
		tier Tier
		want Source
	}{
		{GameBreathing, "", SourceBreathingExercise},
		{GameBreathing, TierFlow, SourceBreathingExercise},
		{GameColorMatching, TierZen, SourceColorMatchingZen},
		{GameColorMatching, TierChill, SourceColorMatchingChill},
		{GameColorMatching, TierFlow, SourceColorMatchingFlow},
		{GameColorMatching, "", SourceColorMatching},
	}
	for _, tc := range cases {
		got, ok := GameSource(tc.game, tc.tier)
		if !ok || got != tc.want {
			t.Fatalf("GameSource(%s, %s) = %s,%v want %s", tc.game, tc.tier, got, ok, tc.want)
		}
	}
	if _, ok := GameSource("chess", ""); ok {
		t.Fatalf("expected unknown game to be rejected")
	}
}

func TestCatalogue_Amounts(t *testing.T) {
	want := map[Source]int{
		SourceMoodEntry:          10,
		SourceFirstMood:          50,
		SourceBreathingExercise:  5,
		SourceColorMatchingZen:   1,
		SourceColorMatchingChill: 3,
		SourceColorMatchingFlow:  5,
		SourceColorMatching:      1,
		SourceArticleRead:        10,
		SourceFriendAdded:        25,
		SourceFriendInviteJoined: 125,
		SourceDailyLogin:         5,
		SourceStreak7Days:        25,
		SourceStreak30Days:       75,
		SourceLevelUp:            0,
	}
	for src, amount := range want {
		got, ok := src.Amount()
		if !ok || got != amount {
			t.Fatalf("%s amount = %d,%v want %d", src, got, ok, amount)
		}
		if src.Description() == "" {
			t.Fatalf("%s has no description", src)
		}
	}
	if _, ok := ParseSource("telepathy"); ok {
		t.Fatalf("expected unknown source to be rejected")
	}
}
