package service

import "fmt"

// Source tags the reason for an XP award.
type Source string

const (
	SourceMoodEntry          Source = "mood_entry"
	SourceFirstMood          Source = "first_mood"
	SourceBreathingExercise  Source = "breathing_exercise"
	SourceColorMatchingZen   Source = "color_matching_zen"
	SourceColorMatchingChill Source = "color_matching_chill"
	SourceColorMatchingFlow  Source = "color_matching_flow"
	SourceColorMatching      Source = "color_matching"
	SourceArticleRead        Source = "article_read"
	SourceFriendAdded        Source = "friend_added"
	SourceFriendInviteJoined Source = "friend_invite_joined"
	SourceDailyLogin         Source = "daily_login"
	SourceStreak7Days        Source = "streak_7_days"
	SourceStreak30Days       Source = "streak_30_days"

	// SourceLevelUp never moves XP. It only labels level-up notifications.
	SourceLevelUp Source = "level_up"
)

type catalogueEntry struct {
	amount      int
	description string
}

var catalogue = map[Source]catalogueEntry{
	SourceMoodEntry:          {10, "Mood entry logged"},
	SourceFirstMood:          {50, "First mood ever logged"},
	SourceBreathingExercise:  {5, "Breathing exercise completed"},
	SourceColorMatchingZen:   {1, "Color matching completed (zen)"},
	SourceColorMatchingChill: {3, "Color matching completed (chill)"},
	SourceColorMatchingFlow:  {5, "Color matching completed (flow)"},
	SourceColorMatching:      {1, "Color matching completed"},
	SourceArticleRead:        {10, "Article read"},
	SourceFriendAdded:        {25, "Friend added"},
	SourceFriendInviteJoined: {125, "Invited friend joined"},
	SourceDailyLogin:         {5, "Daily login bonus"},
	SourceStreak7Days:        {25, "7-day streak milestone"},
	SourceStreak30Days:       {75, "30-day streak milestone"},
	SourceLevelUp:            {0, "Level up"},
}

// Amount returns the catalogue XP for a source.
func (s Source) Amount() (int, bool) {
	e, ok := catalogue[s]
	return e.amount, ok
}

// Description returns the human-readable label stored on transactions.
func (s Source) Description() string {
	if e, ok := catalogue[s]; ok {
		return e.description
	}
	return fmt.Sprintf("XP from %s", string(s))
}

func (s Source) Valid() bool {
	_, ok := catalogue[s]
	return ok
}

// ParseSource validates a raw source string against the catalogue.
func ParseSource(raw string) (Source, bool) {
	s := Source(raw)
	return s, s.Valid()
}

// Game identifies a relaxation game that can award XP on completion.
type Game string

const (
	GameBreathing     Game = "breathing"
	GameColorMatching Game = "color_matching"
)

// Tier is the difficulty of a color-matching round. Empty means unspecified.
type Tier string

const (
	TierZen   Tier = "zen"
	TierChill Tier = "chill"
	TierFlow  Tier = "flow"
)

// GameSource maps a completed game and tier onto its catalogue source.
func GameSource(game Game, tier Tier) (Source, bool) {
	switch game {
	case GameBreathing:
		return SourceBreathingExercise, true
	case GameColorMatching:
		switch tier {
		case TierZen:
			return SourceColorMatchingZen, true
		case TierChill:
			return SourceColorMatchingChill, true
		case TierFlow:
			return SourceColorMatchingFlow, true
		default:
			return SourceColorMatching, true
		}
	default:
		return "", false
	}
}
