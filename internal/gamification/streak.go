package gamification

import "time"

const (
	baseBonusPoints = 50
	baseBonusXP     = 10
)

type StreakBonus struct {
	Points int
	XP     int
}

// BonusFor returns the daily bonus for reaching exactly the given streak value.
// Tier bonuses are added on top of the base and fire only when the new streak
// equals the tier threshold, so a rebuilt streak earns them again.
func BonusFor(streak int) StreakBonus {
	bonus := StreakBonus{Points: baseBonusPoints, XP: baseBonusXP}
	switch streak {
	case 3:
		bonus.Points += 50
	case 7:
		bonus.Points += 150
		bonus.XP += 40
	case 30:
		bonus.Points += 1000
		bonus.XP += 190
	}
	return bonus
}

// SameDay compares two timestamps by calendar date in the server's local zone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextStreak resolves the day-boundary state machine: a claim the day after the
// previous one continues the streak, anything else (first claim or a gap of two
// and more days) restarts it at 1. Callers must reject same-day claims first.
func NextStreak(lastClaim *time.Time, current int, now time.Time) int {
	if lastClaim == nil {
		return 1
	}
	yesterday := now.AddDate(0, 0, -1)
	if SameDay(*lastClaim, yesterday) {
		return current + 1
	}
	return 1
}
