package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/gamification"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

// BadgeService evaluates the badge catalog against a user's statistics
// snapshot. Grants are independent of each other: a badge awarded in this pass
// never feeds the stats another badge is checked against.
type BadgeService struct {
	badgesRepo  repository.BadgesRepositoryI
	usersRepo   repository.UsersRepositoryI
	tasksRepo   repository.TasksRepositoryI
	streaksRepo repository.StreaksRepositoryI
	ledgerRepo  repository.LedgerRepositoryI
	tx          repository.TxManagerI
}

func NewBadgeService(
	badgesRepo repository.BadgesRepositoryI,
	usersRepo repository.UsersRepositoryI,
	tasksRepo repository.TasksRepositoryI,
	streaksRepo repository.StreaksRepositoryI,
	ledgerRepo repository.LedgerRepositoryI,
	tx repository.TxManagerI,
) *BadgeService {
	if badgesRepo == nil || usersRepo == nil || tasksRepo == nil || streaksRepo == nil || ledgerRepo == nil || tx == nil {
		log.Fatal("on badge service provided nil dependencies")
	}
	return &BadgeService{
		badgesRepo:  badgesRepo,
		usersRepo:   usersRepo,
		tasksRepo:   tasksRepo,
		streaksRepo: streaksRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
	}
}

func (serv *BadgeService) EvaluateAndAward(ctx context.Context, uid uuid.UUID) ([]AwardedBadge, error) {
	stats, err := serv.collectStats(ctx, uid)
	if err != nil {
		return nil, err
	}
	badges, err := serv.badgesRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	granted, err := serv.badgesRepo.GrantedIDs(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	awarded := []AwardedBadge{}
	for _, badge := range badges {
		if granted[badge.ID] || !gamification.ConditionMet(badge, *stats) {
			continue
		}
		grantedNow := false
		err := serv.tx.WithTx(ctx, func(q repository.Querier) error {
			ok, err := serv.badgesRepo.Grant(ctx, q, uid, badge.ID)
			if err != nil {
				return errors.New("repository error: " + err.Error())
			}
			// Lost a race with a concurrent evaluation, the reward was paid there.
			if !ok {
				return nil
			}
			if badge.RewardPoints > 0 {
				user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, uid)
				if err != nil {
					return errors.New("repository error: " + err.Error())
				}
				available, total := creditPoints(user, badge.RewardPoints, entity.ReasonBadgeReward)
				err = serv.usersRepo.UpdateProgress(
					ctx, q, uid,
					available,
					total,
					user.Level,
					user.XP,
				)
				if err != nil {
					return errors.New("repository error: " + err.Error())
				}
				err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
					UserID: uid,
					Amount: badge.RewardPoints,
					Reason: entity.ReasonBadgeReward,
				})
				if err != nil {
					return errors.New("repository error: " + err.Error())
				}
			}
			grantedNow = true
			return nil
		})
		if err != nil {
			return awarded, err
		}
		if grantedNow {
			awarded = append(awarded, AwardedBadge{
				ID:           badge.ID,
				Name:         badge.Name,
				Icon:         badge.Icon,
				RewardPoints: badge.RewardPoints,
			})
		}
	}
	return awarded, nil
}

func (serv *BadgeService) collectStats(ctx context.Context, uid uuid.UUID) (*entity.UserStats, error) {
	user, err := serv.usersRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	completed, early, team, err := serv.tasksRepo.StatsByUser(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	streak, err := serv.streaksRepo.Get(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return &entity.UserStats{
		CompletedTasks:   completed,
		EarlyCompletions: early,
		TeamTasks:        team,
		TotalPoints:      user.TotalPoints,
		Level:            user.Level,
		StreakDays:       streak.Current,
	}, nil
}

func (serv *BadgeService) GetCatalog(ctx context.Context) ([]*entity.Badge, error) {
	badges, err := serv.badgesRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return badges, nil
}

func (serv *BadgeService) GetUserBadges(ctx context.Context, uid uuid.UUID) ([]UserBadgeInfo, error) {
	grants, err := serv.badgesRepo.GetUserBadges(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	badges, err := serv.badgesRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	catalog := make(map[uuid.UUID]*entity.Badge, len(badges))
	for _, badge := range badges {
		catalog[badge.ID] = badge
	}
	result := make([]UserBadgeInfo, 0, len(grants))
	for _, grant := range grants {
		badge, ok := catalog[grant.BadgeID]
		if !ok {
			continue
		}
		result = append(result, UserBadgeInfo{
			Badge:    *badge,
			EarnedAt: grant.EarnedAt,
		})
	}
	return result, nil
}
