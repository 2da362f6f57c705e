package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/taskquest/backend/pkg/entity"
)

type BadgesRepository struct {
	conn PgConnection
}

func NewBadgesRepo(conn PgConnection) *BadgesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for badgesRepo: " + err.Error())
	}
	return &BadgesRepository{
		conn: conn,
	}
}

func (br *BadgesRepository) GetAll(ctx context.Context) ([]*entity.Badge, error) {
	rows, err := br.conn.Query(ctx, `SELECT id, name, description, icon, condition_type, threshold, reward_points FROM badges ORDER BY name;`)
	if err != nil {
		return nil, errors.New("getting badge catalog error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Badge, 0, 8)
	for rows.Next() {
		badge := entity.Badge{}
		err = rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Icon, &badge.Condition, &badge.Threshold, &badge.RewardPoints)
		if err != nil {
			return nil, errors.New("badge row parsing error: " + err.Error())
		}
		result = append(result, &badge)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected badge rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (br *BadgesRepository) GrantedIDs(ctx context.Context, uid uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := br.conn.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1;`, uid)
	if err != nil {
		return nil, errors.New("getting granted badges error: " + err.Error())
	}
	defer rows.Close()
	result := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.New("granted badge row parsing error: " + err.Error())
		}
		result[id] = true
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected granted badge rows error: " + rows.Err().Error())
	}
	return result, nil
}

// Grant inserts the (user, badge) pair. ON CONFLICT DO NOTHING makes the grant
// race-safe: a concurrent evaluation that lost the insert gets false back and
// must not pay the badge reward again.
func (br *BadgesRepository) Grant(ctx context.Context, q Querier, uid, badgeID uuid.UUID) (bool, error) {
	ct, err := q.Exec(
		ctx,
		`INSERT INTO user_badges (user_id, badge_id) VALUES ($1, $2) ON CONFLICT (user_id, badge_id) DO NOTHING;`,
		uid,
		badgeID,
	)
	if err != nil {
		return false, errors.New("granting badge error: " + err.Error())
	}
	return ct.RowsAffected() == 1, nil
}

func (br *BadgesRepository) GetUserBadges(ctx context.Context, uid uuid.UUID) ([]entity.UserBadge, error) {
	rows, err := br.conn.Query(ctx, `SELECT user_id, badge_id, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at DESC;`, uid)
	if err != nil {
		return nil, errors.New("getting user badges error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.UserBadge, 0, 8)
	for rows.Next() {
		grant := entity.UserBadge{}
		if err := rows.Scan(&grant.UserID, &grant.BadgeID, &grant.EarnedAt); err != nil {
			return nil, errors.New("user badge row parsing error: " + err.Error())
		}
		result = append(result, grant)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected user badge rows error: " + rows.Err().Error())
	}
	return result, nil
}
