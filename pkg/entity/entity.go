package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID
	Name            string
	PasswordHash    string
	IsManager       bool
	Level           int
	XP              int
	AvailablePoints int
	TotalPoints     int
	CreatedAt       time.Time
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"desc"`
	CreatedAt   time.Time `json:"created_at"`
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Task struct {
	ID          uuid.UUID   `json:"id"`
	ProjectID   *uuid.UUID  `json:"project_id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"desc"`
	BasePoints  int         `json:"base_points"`
	BonusXP     int         `json:"bonus_xp"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Status      TaskStatus  `json:"status"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Assignees   []uuid.UUID `json:"assignees"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// LedgerReason tags every point ledger entry with the event that produced it.
type LedgerReason string

const (
	ReasonTaskCompletion LedgerReason = "task_completion"
	ReasonTaskReset      LedgerReason = "task_reset"
	ReasonLoginBonus     LedgerReason = "login_bonus"
	ReasonBadgeReward    LedgerReason = "badge_reward"
	ReasonRedemption     LedgerReason = "reward_redemption"
	ReasonRefund         LedgerReason = "reward_rejection_refund"
)

// CountsTowardTotal reports whether entries with this reason represent lifetime
// earnings. Refunds restore available points only: they were counted already.
func (r LedgerReason) CountsTowardTotal() bool {
	switch r {
	case ReasonTaskCompletion, ReasonLoginBonus, ReasonBadgeReward:
		return true
	}
	return false
}

type PointLedgerEntry struct {
	ID        int64        `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Amount    int          `json:"amount"`
	Reason    LedgerReason `json:"reason"`
	TaskID    *uuid.UUID   `json:"task_id,omitempty"`
	RewardID  *uuid.UUID   `json:"reward_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type LoginStreak struct {
	UserID    uuid.UUID  `json:"user_id"`
	Current   int        `json:"current_streak"`
	Longest   int        `json:"longest_streak"`
	LastClaim *time.Time `json:"last_claim,omitempty"`
}

// BadgeCondition is the statistic a badge threshold is checked against.
// A badge without a condition is manual-grant only.
type BadgeCondition string

const (
	ConditionTaskCount       BadgeCondition = "task_count"
	ConditionStreak          BadgeCondition = "streak"
	ConditionEarlyCompletion BadgeCondition = "early_completion"
	ConditionQuality         BadgeCondition = "quality"
	ConditionTeamTask        BadgeCondition = "team_task"
	ConditionLevel           BadgeCondition = "level"
	ConditionTotalPoints     BadgeCondition = "total_points"
)

type Badge struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"desc"`
	Icon         string          `json:"icon"`
	Condition    *BadgeCondition `json:"condition,omitempty"`
	Threshold    *int            `json:"threshold,omitempty"`
	RewardPoints int             `json:"reward_points"`
}

type UserBadge struct {
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

type Reward struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"desc"`
	Cost        int       `json:"cost"`
	Active      bool      `json:"active"`
}

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionApproved RedemptionStatus = "approved"
	RedemptionRejected RedemptionStatus = "rejected"
)

type Redemption struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	RewardID   uuid.UUID        `json:"reward_id"`
	Cost       int              `json:"cost"`
	Status     RedemptionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
}

// UserStats is the snapshot badge conditions are evaluated against.
type UserStats struct {
	CompletedTasks   int `json:"completed_tasks"`
	EarlyCompletions int `json:"early_completions"`
	TeamTasks        int `json:"team_tasks"`
	TotalPoints      int `json:"total_points"`
	Level            int `json:"level"`
	StreakDays       int `json:"streak_days"`
}

type LeaderboardRow struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}
