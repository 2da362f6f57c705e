package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"

	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

var ledgerColumns = []string{"id", "user_id", "amount", "reason", "task_id", "reward_id", "created_at"}

func TestCreateLedgerEntry(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewLedgerRepo(conn)
	taskID := uuid.New()
	entry := entity.PointLedgerEntry{
		UserID: uuid.New(),
		Amount: 100,
		Reason: entity.ReasonTaskCompletion,
		TaskID: &taskID,
	}
	query := regexp.QuoteMeta(`INSERT INTO point_ledger (user_id, amount, reason, task_id, reward_id) VALUES ($1, $2, $3, $4, $5);`)
	t.Run("appended", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(entry.UserID, entry.Amount, entry.Reason, entry.TaskID, entry.RewardID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.Create(ctx, conn, &entry)
		assert.NoError(t, err)
	})
	t.Run("nil entry rejected", func(t *testing.T) {
		err := repo.Create(ctx, conn, nil)
		assert.Error(t, err)
	})
	t.Run("zero amount rejected", func(t *testing.T) {
		err := repo.Create(ctx, conn, &entity.PointLedgerEntry{UserID: entry.UserID, Reason: entity.ReasonLoginBonus})
		assert.Error(t, err)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(entry.UserID, entry.Amount, entry.Reason, entry.TaskID, entry.RewardID).
			WillReturnError(errors.New("db error"))
		err := repo.Create(ctx, conn, &entry)
		assert.Error(t, err)
	})
}

func TestGetLedgerByUser(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewLedgerRepo(conn)
	uid := uuid.New()
	query := regexp.QuoteMeta(`SELECT id, user_id, amount, reason, task_id, reward_id, created_at FROM point_ledger WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`)
	t.Run("history returned", func(t *testing.T) {
		now := time.Now()
		conn.ExpectQuery(query).WithArgs(uid, 10, 0).WillReturnRows(
			pgxmock.NewRows(ledgerColumns).
				AddRow(int64(2), uid, -50, entity.ReasonTaskReset, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now).
				AddRow(int64(1), uid, 50, entity.ReasonLoginBonus, (*uuid.UUID)(nil), (*uuid.UUID)(nil), now.Add(-time.Hour)),
		)
		entries, err := repo.GetByUser(ctx, uid, 10, 0)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, -50, entries[0].Amount)
		assert.Equal(t, entity.ReasonLoginBonus, entries[1].Reason)
	})
	t.Run("empty history", func(t *testing.T) {
		conn.ExpectQuery(query).WithArgs(uid, 10, 0).WillReturnRows(pgxmock.NewRows(ledgerColumns))
		entries, err := repo.GetByUser(ctx, uid, 10, 0)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).WithArgs(uid, 10, 0).WillReturnError(errors.New("db error"))
		_, err := repo.GetByUser(ctx, uid, 10, 0)
		assert.Error(t, err)
	})
}

func TestLastCompletionEntry(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewLedgerRepo(conn)
	uid := uuid.New()
	taskID := uuid.New()
	query := regexp.QuoteMeta(`SELECT id, user_id, amount, reason, task_id, reward_id, created_at FROM point_ledger WHERE user_id = $1 AND task_id = $2 AND reason = $3 ORDER BY created_at DESC, id DESC LIMIT 1;`)
	t.Run("found", func(t *testing.T) {
		conn.ExpectQuery(query).WithArgs(uid, taskID, entity.ReasonTaskCompletion).WillReturnRows(
			pgxmock.NewRows(ledgerColumns).
				AddRow(int64(7), uid, 100, entity.ReasonTaskCompletion, &taskID, (*uuid.UUID)(nil), time.Now()),
		)
		entry, err := repo.LastCompletionEntry(ctx, conn, uid, taskID)
		assert.NoError(t, err)
		assert.Equal(t, 100, entry.Amount)
	})
	t.Run("no entry means nil without error", func(t *testing.T) {
		conn.ExpectQuery(query).WithArgs(uid, taskID, entity.ReasonTaskCompletion).WillReturnError(pgx.ErrNoRows)
		entry, err := repo.LastCompletionEntry(ctx, conn, uid, taskID)
		assert.NoError(t, err)
		assert.Nil(t, entry)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).WithArgs(uid, taskID, entity.ReasonTaskCompletion).WillReturnError(errors.New("db error"))
		_, err := repo.LastCompletionEntry(ctx, conn, uid, taskID)
		assert.Error(t, err)
	})
}

func TestLeaderboard(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewLedgerRepo(conn)
	columns := []string{"id", "name", "points"}
	first := uuid.New()
	second := uuid.New()
	t.Run("all time ranks in order", func(t *testing.T) {
		query := regexp.QuoteMeta(`WHERE l.amount > 0 GROUP BY u.id, u.name ORDER BY points DESC, u.name LIMIT $1;`)
		conn.ExpectQuery(query).WithArgs(10).WillReturnRows(
			pgxmock.NewRows(columns).
				AddRow(first, "alice", 900).
				AddRow(second, "bob", 400),
		)
		rows, err := repo.Leaderboard(ctx, nil, 10)
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Rank)
		assert.Equal(t, "alice", rows[0].Name)
		assert.Equal(t, 2, rows[1].Rank)
		assert.Equal(t, 400, rows[1].Points)
	})
	t.Run("windowed query passes since", func(t *testing.T) {
		since := time.Now().AddDate(0, 0, -7)
		query := regexp.QuoteMeta(`WHERE l.amount > 0 AND l.created_at >= $1 GROUP BY u.id, u.name ORDER BY points DESC, u.name LIMIT $2;`)
		conn.ExpectQuery(query).WithArgs(since, 10).WillReturnRows(pgxmock.NewRows(columns))
		rows, err := repo.Leaderboard(ctx, &since, 10)
		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}
