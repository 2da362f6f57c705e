package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

var rewardColumns = []string{"id", "name", "description", "cost", "active"}

func TestGetRewardByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRewardsRepo(mock)
	ctx := context.Background()
	reward := entity.Reward{
		ID:          uuid.New(),
		Name:        "Coffee Voucher",
		Description: "One free coffee",
		Cost:        200,
		Active:      true,
	}
	query := regexp.QuoteMeta(`SELECT id, name, description, cost, active FROM rewards WHERE id = $1;`)
	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(reward.ID).WillReturnRows(
			pgxmock.NewRows(rewardColumns).AddRow(reward.ID, reward.Name, reward.Description, reward.Cost, reward.Active),
		)
		result, err := repo.GetByID(ctx, reward.ID)
		assert.NoError(t, err)
		assert.Equal(t, reward, *result)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(reward.ID).WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(ctx, reward.ID)
		assert.ErrorIs(t, err, errorvalues.ErrRewardNotFound)
	})
}

func TestGetAllRewards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRewardsRepo(mock)
	ctx := context.Background()
	t.Run("active only", func(t *testing.T) {
		query := regexp.QuoteMeta(`SELECT id, name, description, cost, active FROM rewards WHERE active ORDER BY cost;`)
		mock.ExpectQuery(query).WillReturnRows(
			pgxmock.NewRows(rewardColumns).AddRow(uuid.New(), "Coffee Voucher", "One free coffee", 200, true),
		)
		rewards, err := repo.GetAll(ctx, true)
		assert.NoError(t, err)
		assert.Len(t, rewards, 1)
	})
	t.Run("whole catalog", func(t *testing.T) {
		query := regexp.QuoteMeta(`SELECT id, name, description, cost, active FROM rewards ORDER BY cost;`)
		mock.ExpectQuery(query).WillReturnRows(
			pgxmock.NewRows(rewardColumns).
				AddRow(uuid.New(), "Coffee Voucher", "One free coffee", 200, true).
				AddRow(uuid.New(), "Old Reward", "Retired", 100, false),
		)
		rewards, err := repo.GetAll(ctx, false)
		assert.NoError(t, err)
		assert.Len(t, rewards, 2)
	})
	t.Run("db error", func(t *testing.T) {
		query := regexp.QuoteMeta(`SELECT id, name, description, cost, active FROM rewards ORDER BY cost;`)
		mock.ExpectQuery(query).WillReturnError(errors.New("db error"))
		_, err := repo.GetAll(ctx, false)
		assert.Error(t, err)
	})
}

func TestCreateRedemption(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRewardsRepo(mock)
	ctx := context.Background()
	redemption := entity.Redemption{
		UserID:   uuid.New(),
		RewardID: uuid.New(),
		Cost:     200,
	}
	rid := uuid.New()
	query := regexp.QuoteMeta(`INSERT INTO redemptions (user_id, reward_id, cost, status) VALUES ($1, $2, $3, $4) RETURNING id;`)
	t.Run("created pending", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(redemption.UserID, redemption.RewardID, redemption.Cost, entity.RedemptionPending).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rid))
		id, err := repo.CreateRedemption(ctx, mock, &redemption)
		assert.NoError(t, err)
		assert.Equal(t, rid, id)
	})
	t.Run("unexist reward FK violation", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(redemption.UserID, redemption.RewardID, redemption.Cost, entity.RedemptionPending).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		_, err := repo.CreateRedemption(ctx, mock, &redemption)
		assert.ErrorIs(t, err, errorvalues.ErrRewardNotFound)
	})
	t.Run("nil redemption rejected", func(t *testing.T) {
		_, err := repo.CreateRedemption(ctx, mock, nil)
		assert.Error(t, err)
	})
}

func TestGetRedemptionForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRewardsRepo(mock)
	ctx := context.Background()
	redemption := entity.Redemption{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		RewardID:  uuid.New(),
		Cost:      200,
		Status:    entity.RedemptionPending,
		CreatedAt: time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT id, user_id, reward_id, cost, status, created_at, resolved_at FROM redemptions WHERE id = $1 FOR UPDATE;`)
	t.Run("locked and returned", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(redemption.ID).WillReturnRows(
			pgxmock.NewRows([]string{"id", "user_id", "reward_id", "cost", "status", "created_at", "resolved_at"}).
				AddRow(redemption.ID, redemption.UserID, redemption.RewardID, redemption.Cost, redemption.Status, redemption.CreatedAt, redemption.ResolvedAt),
		)
		result, err := repo.GetRedemptionForUpdate(ctx, mock, redemption.ID)
		assert.NoError(t, err)
		assert.Equal(t, redemption, *result)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(redemption.ID).WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetRedemptionForUpdate(ctx, mock, redemption.ID)
		assert.ErrorIs(t, err, errorvalues.ErrRedemptionNotFound)
	})
}

func TestResolveRedemption(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRewardsRepo(mock)
	ctx := context.Background()
	rid := uuid.New()
	resolvedAt := time.Now()
	query := regexp.QuoteMeta(`UPDATE redemptions SET status = $1, resolved_at = $2 WHERE id = $3;`)
	t.Run("resolved", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entity.RedemptionApproved, resolvedAt, rid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.ResolveRedemption(ctx, mock, rid, entity.RedemptionApproved, resolvedAt)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entity.RedemptionRejected, resolvedAt, rid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.ResolveRedemption(ctx, mock, rid, entity.RedemptionRejected, resolvedAt)
		assert.ErrorIs(t, err, errorvalues.ErrRedemptionNotFound)
	})
}
