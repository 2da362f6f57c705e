package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskquest/backend/pkg/entity"
)

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
	// Locks the user row and returns it with progression fields.
	// Must be called inside a transaction
	GetProgressForUpdate(ctx context.Context, q Querier, uid uuid.UUID) (*entity.User, error)
	// Writes back denormalized balance and level fields
	UpdateProgress(ctx context.Context, q Querier, uid uuid.UUID, available, total, level, xp int) error
}

type ProjectsRepositoryI interface {
	// Creates new project. Only OwnerID, Name, Description are necessary
	Create(ctx context.Context, project *entity.Project) (uuid.UUID, error)
	// Searches project with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	// Lists projects. Requires pagination params provided
	GetAll(ctx context.Context, limit, offset int) ([]*entity.Project, error)
}

type TasksRepositoryI interface {
	// Creates new task with its assignee set in one transaction
	Create(ctx context.Context, task *entity.Task) (uuid.UUID, error)
	// Searches task with given id, assignees included
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	// Lists tasks assigned to user, optionally filtered by status
	GetByAssignee(ctx context.Context, uid uuid.UUID, status *entity.TaskStatus, limit, offset int) ([]*entity.Task, error)
	// Locks the task row for a status transition. Must be called inside a transaction
	GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*entity.Task, error)
	// Moves task to status, stamping or clearing completion time
	SetStatus(ctx context.Context, q Querier, id uuid.UUID, status entity.TaskStatus, completedAt *time.Time) error
	// Counts completed, early-completion and team tasks for badge evaluation
	StatsByUser(ctx context.Context, uid uuid.UUID) (completed, early, team int, err error)
}

type LedgerRepositoryI interface {
	// Appends an immutable ledger entry
	Create(ctx context.Context, q Querier, entry *entity.PointLedgerEntry) error
	// Pages user's point history, newest first
	GetByUser(ctx context.Context, uid uuid.UUID, limit, offset int) ([]entity.PointLedgerEntry, error)
	// Returns the most recent task_completion entry for user+task, nil when none
	LastCompletionEntry(ctx context.Context, q Querier, uid, taskID uuid.UUID) (*entity.PointLedgerEntry, error)
	// Sums positive entries per user since the given moment (nil = all time)
	Leaderboard(ctx context.Context, since *time.Time, limit int) ([]entity.LeaderboardRow, error)
}

type StreaksRepositoryI interface {
	// Returns user's streak, zero-valued when no row exists yet
	Get(ctx context.Context, uid uuid.UUID) (*entity.LoginStreak, error)
	// Same as Get but locks the row. Must be called inside a transaction
	GetForUpdate(ctx context.Context, q Querier, uid uuid.UUID) (*entity.LoginStreak, error)
	// Inserts or updates the per-user streak singleton
	Upsert(ctx context.Context, q Querier, streak *entity.LoginStreak) error
}

type BadgesRepositoryI interface {
	// Lists the whole badge catalog
	GetAll(ctx context.Context) ([]*entity.Badge, error)
	// Returns ids of badges already granted to user
	GrantedIDs(ctx context.Context, uid uuid.UUID) (map[uuid.UUID]bool, error)
	// Grants badge to user. Returns false without error if already granted
	Grant(ctx context.Context, q Querier, uid, badgeID uuid.UUID) (bool, error)
	// Lists user's grants, newest first
	GetUserBadges(ctx context.Context, uid uuid.UUID) ([]entity.UserBadge, error)
}

type RewardsRepositoryI interface {
	// Lists reward catalog, optionally active rewards only
	GetAll(ctx context.Context, activeOnly bool) ([]*entity.Reward, error)
	// Searches reward with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error)
	// Creates a pending redemption row
	CreateRedemption(ctx context.Context, q Querier, redemption *entity.Redemption) (uuid.UUID, error)
	// Locks a redemption row for resolution. Must be called inside a transaction
	GetRedemptionForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*entity.Redemption, error)
	// Moves redemption to a final status
	ResolveRedemption(ctx context.Context, q Querier, id uuid.UUID, status entity.RedemptionStatus, resolvedAt time.Time) error
}

type DBConfig interface {
	ConnString() string
}

// Querier is the subset of pgx calls shared by a pool and an open transaction,
// so repository methods can run inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgConnection interface {
	Querier
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
}

type TxManagerI interface {
	// Runs fn inside a transaction, committing on nil error
	WithTx(ctx context.Context, fn func(q Querier) error) error
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
