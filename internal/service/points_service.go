package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

// Leaderboard periods supported by PointsService.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAll     = "all"
)

// creditPoints applies a signed ledger amount to a user's balances. The
// lifetime total moves only for earning reasons: redemptions and refunds
// touch the available balance alone.
func creditPoints(user *entity.User, amount int, reason entity.LedgerReason) (available, total int) {
	available = user.AvailablePoints + amount
	total = user.TotalPoints
	if reason.CountsTowardTotal() {
		total += amount
	}
	return available, total
}

type PointsService struct {
	ledgerRepo repository.LedgerRepositoryI
	now        func() time.Time
}

func NewPointsService(ledgerRepo repository.LedgerRepositoryI) *PointsService {
	if ledgerRepo == nil {
		log.Fatal("on points service provided nil ledger repo")
	}
	return &PointsService{
		ledgerRepo: ledgerRepo,
		now:        time.Now,
	}
}

func (serv *PointsService) History(ctx context.Context, uid uuid.UUID, opts PaginationOpts) ([]entity.PointLedgerEntry, error) {
	entries, err := serv.ledgerRepo.GetByUser(ctx, uid, opts.Limit, opts.Offset)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return entries, nil
}

func (serv *PointsService) Leaderboard(ctx context.Context, period string, limit int) ([]entity.LeaderboardRow, error) {
	var since *time.Time
	switch period {
	case PeriodWeekly:
		from := serv.now().AddDate(0, 0, -7)
		since = &from
	case PeriodMonthly:
		from := serv.now().AddDate(0, -1, 0)
		since = &from
	default:
		// Unknown periods fall back to the all-time board.
	}
	rows, err := serv.ledgerRepo.Leaderboard(ctx, since, limit)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return rows, nil
}
