package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/pkg/entity"
)

type RewardsRepository struct {
	conn PgConnection
}

func NewRewardsRepo(conn PgConnection) *RewardsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for rewardsRepo: " + err.Error())
	}
	return &RewardsRepository{
		conn: conn,
	}
}

func (rr *RewardsRepository) GetAll(ctx context.Context, activeOnly bool) ([]*entity.Reward, error) {
	query := `SELECT id, name, description, cost, active FROM rewards`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY cost;`
	rows, err := rr.conn.Query(ctx, query)
	if err != nil {
		return nil, errors.New("getting reward catalog error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Reward, 0, 8)
	for rows.Next() {
		reward := entity.Reward{}
		if err := rows.Scan(&reward.ID, &reward.Name, &reward.Description, &reward.Cost, &reward.Active); err != nil {
			return nil, errors.New("reward row parsing error: " + err.Error())
		}
		result = append(result, &reward)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected reward rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (rr *RewardsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error) {
	var reward entity.Reward
	row := rr.conn.QueryRow(ctx, `SELECT id, name, description, cost, active FROM rewards WHERE id = $1;`, id)
	if err := row.Scan(&reward.ID, &reward.Name, &reward.Description, &reward.Cost, &reward.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrRewardNotFound
		}
		return nil, errors.New("searching reward by id error: " + err.Error())
	}
	return &reward, nil
}

func (rr *RewardsRepository) CreateRedemption(ctx context.Context, q Querier, redemption *entity.Redemption) (uuid.UUID, error) {
	if redemption == nil {
		return uuid.UUID{}, errors.New("redemption is nil")
	}
	var id uuid.UUID
	row := q.QueryRow(
		ctx,
		`INSERT INTO redemptions (user_id, reward_id, cost, status) VALUES ($1, $2, $3, $4) RETURNING id;`,
		redemption.UserID,
		redemption.RewardID,
		redemption.Cost,
		entity.RedemptionPending,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrRewardNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating redemption error: " + err.Error())
	}
	return id, nil
}

func (rr *RewardsRepository) GetRedemptionForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*entity.Redemption, error) {
	var redemption entity.Redemption
	row := q.QueryRow(
		ctx,
		`SELECT id, user_id, reward_id, cost, status, created_at, resolved_at FROM redemptions WHERE id = $1 FOR UPDATE;`,
		id,
	)
	err := row.Scan(
		&redemption.ID,
		&redemption.UserID,
		&redemption.RewardID,
		&redemption.Cost,
		&redemption.Status,
		&redemption.CreatedAt,
		&redemption.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrRedemptionNotFound
		}
		return nil, errors.New("locking redemption row error: " + err.Error())
	}
	return &redemption, nil
}

func (rr *RewardsRepository) ResolveRedemption(ctx context.Context, q Querier, id uuid.UUID, status entity.RedemptionStatus, resolvedAt time.Time) error {
	ct, err := q.Exec(
		ctx,
		`UPDATE redemptions SET status = $1, resolved_at = $2 WHERE id = $3;`,
		status,
		resolvedAt,
		id,
	)
	if err != nil {
		return errors.New("resolving redemption error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrRedemptionNotFound
	}
	return nil
}
