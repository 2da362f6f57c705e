package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

type RewardService struct {
	rewardsRepo repository.RewardsRepositoryI
	usersRepo   repository.UsersRepositoryI
	ledgerRepo  repository.LedgerRepositoryI
	tx          repository.TxManagerI
	now         func() time.Time
}

func NewRewardService(
	rewardsRepo repository.RewardsRepositoryI,
	usersRepo repository.UsersRepositoryI,
	ledgerRepo repository.LedgerRepositoryI,
	tx repository.TxManagerI,
) *RewardService {
	if rewardsRepo == nil || usersRepo == nil || ledgerRepo == nil || tx == nil {
		log.Fatal("on reward service provided nil dependencies")
	}
	return &RewardService{
		rewardsRepo: rewardsRepo,
		usersRepo:   usersRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		now:         time.Now,
	}
}

func (serv *RewardService) GetCatalog(ctx context.Context) ([]*entity.Reward, error) {
	rewards, err := serv.rewardsRepo.GetAll(ctx, true)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return rewards, nil
}

func (serv *RewardService) Redeem(ctx context.Context, uid, rewardID uuid.UUID) (*entity.Redemption, error) {
	reward, err := serv.rewardsRepo.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrRewardNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	if !reward.Active {
		return nil, errorvalues.ErrRewardInactive
	}
	redemption := &entity.Redemption{
		UserID:   uid,
		RewardID: rewardID,
		Cost:     reward.Cost,
		Status:   entity.RedemptionPending,
	}
	err = serv.tx.WithTx(ctx, func(q repository.Querier) error {
		user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, uid)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		// Balance precondition lives here, the ledger itself never checks it.
		if user.AvailablePoints < reward.Cost {
			return errorvalues.ErrInsufficientBalance
		}
		available, total := creditPoints(user, -reward.Cost, entity.ReasonRedemption)
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
		id, err := serv.rewardsRepo.CreateRedemption(ctx, q, redemption)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		redemption.ID = id
		err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
			UserID:   uid,
			Amount:   -reward.Cost,
			Reason:   entity.ReasonRedemption,
			RewardID: &rewardID,
		})
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

func (serv *RewardService) Approve(ctx context.Context, actorID, redemptionID uuid.UUID) error {
	if err := serv.requireManager(ctx, actorID); err != nil {
		return err
	}
	return serv.tx.WithTx(ctx, func(q repository.Querier) error {
		redemption, err := serv.rewardsRepo.GetRedemptionForUpdate(ctx, q, redemptionID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrRedemptionNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if redemption.Status != entity.RedemptionPending {
			return errorvalues.ErrRedemptionResolved
		}
		err = serv.rewardsRepo.ResolveRedemption(ctx, q, redemptionID, entity.RedemptionApproved, serv.now())
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		return nil
	})
}

// Reject refunds the redemption's cost to available points only: the points
// were already counted as lifetime earnings when originally earned.
func (serv *RewardService) Reject(ctx context.Context, actorID, redemptionID uuid.UUID) error {
	if err := serv.requireManager(ctx, actorID); err != nil {
		return err
	}
	return serv.tx.WithTx(ctx, func(q repository.Querier) error {
		redemption, err := serv.rewardsRepo.GetRedemptionForUpdate(ctx, q, redemptionID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrRedemptionNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if redemption.Status != entity.RedemptionPending {
			return errorvalues.ErrRedemptionResolved
		}
		user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, redemption.UserID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		available, total := creditPoints(user, redemption.Cost, entity.ReasonRefund)
		err = serv.usersRepo.UpdateProgress(
			ctx, q, redemption.UserID,
			available,
			total,
			user.Level,
			user.XP,
		)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
			UserID:   redemption.UserID,
			Amount:   redemption.Cost,
			Reason:   entity.ReasonRefund,
			RewardID: &redemption.RewardID,
		})
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		err = serv.rewardsRepo.ResolveRedemption(ctx, q, redemptionID, entity.RedemptionRejected, serv.now())
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		return nil
	})
}

func (serv *RewardService) requireManager(ctx context.Context, actorID uuid.UUID) error {
	actor, err := serv.usersRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return err
		}
		return errors.New("repository error: " + err.Error())
	}
	if !actor.IsManager {
		return errorvalues.ErrNotManager
	}
	return nil
}
