package service

import (
	"time"

	"anoa.com/moodtracker/internal/entity"
)

// SameCalendarDay compares the calendar dates of a and b as seen in loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DailyLoginClaimed reports whether the ledger already received today's login bonus.
func DailyLoginClaimed(ledger *entity.UserLedger, now time.Time, loc *time.Location) bool {
	if ledger.LastDailyLoginAward == nil {
		return false
	}
	return SameCalendarDay(*ledger.LastDailyLoginAward, now, loc)
}
