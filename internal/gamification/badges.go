package gamification

import "github.com/taskquest/backend/pkg/entity"

// conditionStats maps every badge condition type to its stat accessor. Keeping
// the mapping closed here makes adding a condition a one-line change instead of
// another switch arm in the award loop.
var conditionStats = map[entity.BadgeCondition]func(entity.UserStats) int{
	entity.ConditionTaskCount:       func(s entity.UserStats) int { return s.CompletedTasks },
	entity.ConditionStreak:          func(s entity.UserStats) int { return s.StreakDays },
	entity.ConditionEarlyCompletion: func(s entity.UserStats) int { return s.EarlyCompletions },
	entity.ConditionTeamTask:        func(s entity.UserStats) int { return s.TeamTasks },
	entity.ConditionLevel:           func(s entity.UserStats) int { return s.Level },
	entity.ConditionTotalPoints:     func(s entity.UserStats) int { return s.TotalPoints },
	// No data source tracks task quality yet, the condition never fires.
	entity.ConditionQuality: func(entity.UserStats) int { return 0 },
}

// ConditionMet reports whether the badge's threshold is reached by the stats
// snapshot. Badges without a condition or threshold are manual-grant only and
// never qualify here.
func ConditionMet(badge *entity.Badge, stats entity.UserStats) bool {
	if badge.Condition == nil || badge.Threshold == nil {
		return false
	}
	accessor, ok := conditionStats[*badge.Condition]
	if !ok {
		return false
	}
	return accessor(stats) >= *badge.Threshold
}
