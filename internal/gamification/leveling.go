package gamification

import "math"

// RequiredXP returns how much XP a user must collect on the given level before
// advancing to the next one: floor(100 * level^1.5).
func RequiredXP(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// ApplyXP adds delta to the user's in-level XP and carries overflow across as
// many levels as it covers. Leftover XP is always below the requirement of the
// returned level.
func ApplyXP(level, xp, delta int) (newLevel, newXP int, leveledUp bool) {
	newLevel = level
	newXP = xp + delta
	for newXP >= RequiredXP(newLevel) {
		newXP -= RequiredXP(newLevel)
		newLevel++
	}
	return newLevel, newXP, newLevel > level
}
