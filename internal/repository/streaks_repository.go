package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskquest/backend/pkg/entity"
)

type StreaksRepository struct {
	conn PgConnection
}

func NewStreaksRepo(conn PgConnection) *StreaksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for streaksRepo: " + err.Error())
	}
	return &StreaksRepository{
		conn: conn,
	}
}

func (sr *StreaksRepository) Get(ctx context.Context, uid uuid.UUID) (*entity.LoginStreak, error) {
	return sr.get(ctx, sr.conn, uid, "")
}

// GetForUpdate locks the streak row so two claims in flight for the same user
// can't both pass the same-day check. The row is created lazily on first claim,
// a missing row comes back zero-valued without a lock.
func (sr *StreaksRepository) GetForUpdate(ctx context.Context, q Querier, uid uuid.UUID) (*entity.LoginStreak, error) {
	return sr.get(ctx, q, uid, " FOR UPDATE")
}

func (sr *StreaksRepository) get(ctx context.Context, q Querier, uid uuid.UUID, suffix string) (*entity.LoginStreak, error) {
	var streak entity.LoginStreak
	row := q.QueryRow(
		ctx,
		`SELECT user_id, current_streak, longest_streak, last_claim FROM login_streaks WHERE user_id = $1`+suffix+`;`,
		uid,
	)
	if err := row.Scan(&streak.UserID, &streak.Current, &streak.Longest, &streak.LastClaim); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.LoginStreak{UserID: uid}, nil
		}
		return nil, errors.New("getting login streak error: " + err.Error())
	}
	return &streak, nil
}

func (sr *StreaksRepository) Upsert(ctx context.Context, q Querier, streak *entity.LoginStreak) error {
	if streak == nil {
		return errors.New("streak is nil")
	}
	_, err := q.Exec(
		ctx,
		`INSERT INTO login_streaks (user_id, current_streak, longest_streak, last_claim) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET current_streak = $2, longest_streak = $3, last_claim = $4;`,
		streak.UserID,
		streak.Current,
		streak.Longest,
		streak.LastClaim,
	)
	if err != nil {
		return errors.New("upserting login streak error: " + err.Error())
	}
	return nil
}
