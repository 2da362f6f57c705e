package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskquest/backend/pkg/entity"
)

// LedgerRepository owns the append-only point_ledger table. Entries are never
// updated or deleted; balances live denormalized on users and are adjusted in
// the same transaction as the append.
type LedgerRepository struct {
	conn PgConnection
}

func NewLedgerRepo(conn PgConnection) *LedgerRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for ledgerRepo: " + err.Error())
	}
	return &LedgerRepository{
		conn: conn,
	}
}

func (lr *LedgerRepository) Create(ctx context.Context, q Querier, entry *entity.PointLedgerEntry) error {
	if entry == nil {
		return errors.New("ledger entry is nil")
	}
	if entry.Amount == 0 {
		return errors.New("ledger entry amount is zero")
	}
	_, err := q.Exec(
		ctx,
		`INSERT INTO point_ledger (user_id, amount, reason, task_id, reward_id) VALUES ($1, $2, $3, $4, $5);`,
		entry.UserID,
		entry.Amount,
		entry.Reason,
		entry.TaskID,
		entry.RewardID,
	)
	if err != nil {
		return errors.New("appending ledger entry error: " + err.Error())
	}
	return nil
}

func (lr *LedgerRepository) GetByUser(ctx context.Context, uid uuid.UUID, limit, offset int) ([]entity.PointLedgerEntry, error) {
	rows, err := lr.conn.Query(
		ctx,
		`SELECT id, user_id, amount, reason, task_id, reward_id, created_at FROM point_ledger WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`,
		uid,
		limit,
		offset,
	)
	if err != nil {
		return nil, errors.New("getting ledger history error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.PointLedgerEntry, 0, limit)
	for rows.Next() {
		entry := entity.PointLedgerEntry{}
		err = rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Reason, &entry.TaskID, &entry.RewardID, &entry.CreatedAt)
		if err != nil {
			return nil, errors.New("ledger row parsing error: " + err.Error())
		}
		result = append(result, entry)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected ledger rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (lr *LedgerRepository) LastCompletionEntry(ctx context.Context, q Querier, uid, taskID uuid.UUID) (*entity.PointLedgerEntry, error) {
	row := q.QueryRow(
		ctx,
		`SELECT id, user_id, amount, reason, task_id, reward_id, created_at FROM point_ledger WHERE user_id = $1 AND task_id = $2 AND reason = $3 ORDER BY created_at DESC, id DESC LIMIT 1;`,
		uid,
		taskID,
		entity.ReasonTaskCompletion,
	)
	var entry entity.PointLedgerEntry
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Reason, &entry.TaskID, &entry.RewardID, &entry.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.New("searching completion entry error: " + err.Error())
	}
	return &entry, nil
}

// Leaderboard aggregates positive ledger amounts per user inside the period
// window. Negative entries (redemptions, resets) don't subtract from standings.
func (lr *LedgerRepository) Leaderboard(ctx context.Context, since *time.Time, limit int) ([]entity.LeaderboardRow, error) {
	query := `SELECT u.id, u.name, COALESCE(SUM(l.amount), 0) AS points
		FROM point_ledger l JOIN users u ON u.id = l.user_id
		WHERE l.amount > 0`
	args := []any{}
	if since != nil {
		query += ` AND l.created_at >= $1 GROUP BY u.id, u.name ORDER BY points DESC, u.name LIMIT $2;`
		args = append(args, *since, limit)
	} else {
		query += ` GROUP BY u.id, u.name ORDER BY points DESC, u.name LIMIT $1;`
		args = append(args, limit)
	}
	rows, err := lr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("getting leaderboard error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.LeaderboardRow, 0, limit)
	for rows.Next() {
		row := entity.LeaderboardRow{}
		if err := rows.Scan(&row.UserID, &row.Name, &row.Points); err != nil {
			return nil, errors.New("leaderboard row parsing error: " + err.Error())
		}
		row.Rank = len(result) + 1
		result = append(result, row)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected leaderboard rows error: " + rows.Err().Error())
	}
	return result, nil
}
