package service

// Weekly activity thresholds, in XP earned over the last 7 days.
const (
	WeeklyOnFire   = 150
	WeeklyTrending = 75
	WeeklyActive   = 30
)

// ActivityLabel tags recent activity next to the permanent level.
func ActivityLabel(weeklyXP int) string {
	switch {
	case weeklyXP >= WeeklyOnFire:
		return "on_fire"
	case weeklyXP >= WeeklyTrending:
		return "trending"
	case weeklyXP >= WeeklyActive:
		return "active"
	default:
		return ""
	}
}
