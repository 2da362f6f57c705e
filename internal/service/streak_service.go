package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/gamification"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

// StreakService handles the daily login bonus. Day boundaries follow the
// server's local calendar day.
type StreakService struct {
	streaksRepo repository.StreaksRepositoryI
	usersRepo   repository.UsersRepositoryI
	ledgerRepo  repository.LedgerRepositoryI
	tx          repository.TxManagerI
	now         func() time.Time
}

func NewStreakService(
	streaksRepo repository.StreaksRepositoryI,
	usersRepo repository.UsersRepositoryI,
	ledgerRepo repository.LedgerRepositoryI,
	tx repository.TxManagerI,
) *StreakService {
	if streaksRepo == nil || usersRepo == nil || ledgerRepo == nil || tx == nil {
		log.Fatal("on streak service provided nil dependencies")
	}
	return &StreakService{
		streaksRepo: streaksRepo,
		usersRepo:   usersRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		now:         time.Now,
	}
}

// NewStreakServiceWithClock is for tests that pin "today".
func NewStreakServiceWithClock(
	streaksRepo repository.StreaksRepositoryI,
	usersRepo repository.UsersRepositoryI,
	ledgerRepo repository.LedgerRepositoryI,
	tx repository.TxManagerI,
	clock func() time.Time,
) *StreakService {
	serv := NewStreakService(streaksRepo, usersRepo, ledgerRepo, tx)
	serv.now = clock
	return serv
}

func (serv *StreakService) ClaimDailyBonus(ctx context.Context, uid uuid.UUID) (*ClaimResult, error) {
	result := &ClaimResult{}
	err := serv.tx.WithTx(ctx, func(q repository.Querier) error {
		// The user row is locked before the streak row is even read: a user's
		// first claim has no streak row yet, so locking it couldn't serialize
		// concurrent claims, while the user row always exists.
		user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, uid)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		streak, err := serv.streaksRepo.GetForUpdate(ctx, q, uid)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		now := serv.now()
		if streak.LastClaim != nil && gamification.SameDay(*streak.LastClaim, now) {
			return errorvalues.ErrBonusAlreadyClaimed
		}
		next := gamification.NextStreak(streak.LastClaim, streak.Current, now)
		longest := max(streak.Longest, next)
		bonus := gamification.BonusFor(next)
		err = serv.streaksRepo.Upsert(ctx, q, &entity.LoginStreak{
			UserID:    uid,
			Current:   next,
			Longest:   longest,
			LastClaim: &now,
		})
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		newLevel, newXP, _ := gamification.ApplyXP(user.Level, user.XP, bonus.XP)
		available, total := creditPoints(user, bonus.Points, entity.ReasonLoginBonus)
		err = serv.usersRepo.UpdateProgress(
			ctx, q, uid,
			available,
			total,
			newLevel,
			newXP,
		)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
			UserID: uid,
			Amount: bonus.Points,
			Reason: entity.ReasonLoginBonus,
		})
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		result.PointsEarned = bonus.Points
		result.XPEarned = bonus.XP
		result.CurrentStreak = next
		result.LongestStreak = longest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (serv *StreakService) Status(ctx context.Context, uid uuid.UUID) (*StreakStatus, error) {
	streak, err := serv.streaksRepo.Get(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return &StreakStatus{
		CurrentStreak: streak.Current,
		LongestStreak: streak.Longest,
		LastClaim:     streak.LastClaim,
		ClaimedToday:  streak.LastClaim != nil && gamification.SameDay(*streak.LastClaim, serv.now()),
	}, nil
}
