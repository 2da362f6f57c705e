package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskquest/backend/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type CreateProjectRequest struct {
	Name        string `validate:"required,min=1,max=200"`
	Description string `validate:"max=2000"`
}

type CreateTaskRequest struct {
	Title       string `validate:"required,min=1,max=200"`
	Description string `validate:"max=2000"`
	ProjectID   *uuid.UUID
	BasePoints  int `validate:"min=0"`
	BonusXP     int `validate:"min=0"`
	Deadline    *time.Time
	Assignees   []uuid.UUID `validate:"required,min=1"`
}

type PaginationOpts struct {
	Limit  int
	Offset int
}

type AwardedBadge struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	RewardPoints int       `json:"reward_points"`
}

type CompletionResult struct {
	PointsEarned int            `json:"points_earned"`
	XPEarned     int            `json:"xp_earned"`
	NewLevel     int            `json:"new_level"`
	LevelUp      bool           `json:"level_up"`
	Badges       []AwardedBadge `json:"badges_earned"`
}

type ResetResult struct {
	PointsRevoked int `json:"points_revoked"`
}

type ClaimResult struct {
	PointsEarned  int `json:"points_earned"`
	XPEarned      int `json:"xp_earned"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type StreakStatus struct {
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastClaim     *time.Time `json:"last_login_date,omitempty"`
	ClaimedToday  bool       `json:"claimed_today"`
}

type UserBadgeInfo struct {
	Badge    entity.Badge `json:"badge"`
	EarnedAt time.Time    `json:"earned_at"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type ProjectServiceI interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, req CreateProjectRequest) (*entity.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	GetProjects(ctx context.Context, opts PaginationOpts) ([]*entity.Project, error)
}

type TaskServiceI interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entity.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	GetUserTasks(ctx context.Context, uid uuid.UUID, status *entity.TaskStatus, opts PaginationOpts) ([]*entity.Task, error)
	// Marks the task completed by one of its assignees, credits points and XP,
	// appends the ledger entry and evaluates badges
	CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*CompletionResult, error)
	// Undoes a completion: revokes the completion entry's points (floored at
	// zero) and reverts the task to pending. XP and level stay as they are
	ResetTask(ctx context.Context, taskID, userID uuid.UUID) (*ResetResult, error)
}

type StreakServiceI interface {
	// Claims the daily login bonus, at most once per calendar day
	ClaimDailyBonus(ctx context.Context, uid uuid.UUID) (*ClaimResult, error)
	// Read-only streak snapshot
	Status(ctx context.Context, uid uuid.UUID) (*StreakStatus, error)
}

type BadgeServiceI interface {
	// Grants every not-yet-earned badge whose condition the user now satisfies
	// and pays the one-time rewards. Returns only the newly awarded badges
	EvaluateAndAward(ctx context.Context, uid uuid.UUID) ([]AwardedBadge, error)
	GetCatalog(ctx context.Context) ([]*entity.Badge, error)
	GetUserBadges(ctx context.Context, uid uuid.UUID) ([]UserBadgeInfo, error)
}

type RewardServiceI interface {
	GetCatalog(ctx context.Context) ([]*entity.Reward, error)
	// Debits available points and opens a pending redemption. Fails with
	// ErrInsufficientBalance before touching anything when the user can't afford it
	Redeem(ctx context.Context, uid, rewardID uuid.UUID) (*entity.Redemption, error)
	// Manager actions on pending redemptions
	Approve(ctx context.Context, actorID, redemptionID uuid.UUID) error
	Reject(ctx context.Context, actorID, redemptionID uuid.UUID) error
}

type PointsServiceI interface {
	History(ctx context.Context, uid uuid.UUID, opts PaginationOpts) ([]entity.PointLedgerEntry, error)
	Leaderboard(ctx context.Context, period string, limit int) ([]entity.LeaderboardRow, error)
}
