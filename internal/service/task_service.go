package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/gamification"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

// TaskService drives the completion flow: task status, points, XP and the
// ledger move in one transaction, badge evaluation runs after commit.
type TaskService struct {
	tasksRepo    repository.TasksRepositoryI
	usersRepo    repository.UsersRepositoryI
	ledgerRepo   repository.LedgerRepositoryI
	badgeService BadgeServiceI
	tx           repository.TxManagerI
	now          func() time.Time
}

func NewTaskService(
	tasksRepo repository.TasksRepositoryI,
	usersRepo repository.UsersRepositoryI,
	ledgerRepo repository.LedgerRepositoryI,
	badgeService BadgeServiceI,
	tx repository.TxManagerI,
) *TaskService {
	if tasksRepo == nil || usersRepo == nil || ledgerRepo == nil || badgeService == nil || tx == nil {
		log.Fatal("on task service provided nil dependencies")
	}
	return &TaskService{
		tasksRepo:    tasksRepo,
		usersRepo:    usersRepo,
		ledgerRepo:   ledgerRepo,
		badgeService: badgeService,
		tx:           tx,
		now:          time.Now,
	}
}

func (serv *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest) (*entity.Task, error) {
	err := validate.Struct(req)
	if err != nil {
		if validationError, ok := err.(validator.ValidationErrors); ok {
			err = errors.New("validation error: ")
			for _, fieldErr := range validationError {
				err = errors.Join(err, fieldErr)
			}
			return nil, err
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	id, err := serv.tasksRepo.Create(ctx, &entity.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		BasePoints:  req.BasePoints,
		BonusXP:     req.BonusXP,
		Deadline:    req.Deadline,
		Assignees:   req.Assignees,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrProjectNotFound) || errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	task, err := serv.tasksRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return task, nil
}

func (serv *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	task, err := serv.tasksRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return task, nil
}

func (serv *TaskService) GetUserTasks(ctx context.Context, uid uuid.UUID, status *entity.TaskStatus, opts PaginationOpts) ([]*entity.Task, error) {
	tasks, err := serv.tasksRepo.GetByAssignee(ctx, uid, status, opts.Limit, opts.Offset)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return tasks, nil
}

func (serv *TaskService) CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*CompletionResult, error) {
	result := &CompletionResult{Badges: []AwardedBadge{}}
	err := serv.tx.WithTx(ctx, func(q repository.Querier) error {
		task, err := serv.tasksRepo.GetForUpdate(ctx, q, taskID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrTaskNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if !slices.Contains(task.Assignees, userID) {
			return errorvalues.ErrNotAssignee
		}
		if task.Status == entity.TaskStatusCompleted {
			return errorvalues.ErrTaskAlreadyCompleted
		}
		completedAt := serv.now()
		if err := serv.tasksRepo.SetStatus(ctx, q, taskID, entity.TaskStatusCompleted, &completedAt); err != nil {
			return errors.New("repository error: " + err.Error())
		}
		user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, userID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		newLevel, newXP, leveledUp := gamification.ApplyXP(user.Level, user.XP, task.BonusXP)
		available, total := creditPoints(user, task.BasePoints, entity.ReasonTaskCompletion)
		err = serv.usersRepo.UpdateProgress(
			ctx, q, userID,
			available,
			total,
			newLevel,
			newXP,
		)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		if task.BasePoints != 0 {
			err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
				UserID: userID,
				Amount: task.BasePoints,
				Reason: entity.ReasonTaskCompletion,
				TaskID: &taskID,
			})
			if err != nil {
				return errors.New("repository error: " + err.Error())
			}
		}
		result.PointsEarned = task.BasePoints
		result.XPEarned = task.BonusXP
		result.NewLevel = newLevel
		result.LevelUp = leveledUp
		return nil
	})
	if err != nil {
		return nil, err
	}
	// A badge evaluation failure must never undo the committed points, so it is
	// logged and swallowed here.
	awarded, err := serv.badgeService.EvaluateAndAward(ctx, userID)
	if err != nil {
		slog.Error("badge evaluation failed after completion",
			slog.String("task_id", taskID.String()),
			slog.String("uid", userID.String()),
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	result.Badges = awarded
	return result, nil
}

func (serv *TaskService) ResetTask(ctx context.Context, taskID, userID uuid.UUID) (*ResetResult, error) {
	result := &ResetResult{}
	err := serv.tx.WithTx(ctx, func(q repository.Querier) error {
		task, err := serv.tasksRepo.GetForUpdate(ctx, q, taskID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrTaskNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		if !slices.Contains(task.Assignees, userID) {
			return errorvalues.ErrNotAssignee
		}
		if task.Status != entity.TaskStatusCompleted {
			return errorvalues.ErrTaskNotCompleted
		}
		entry, err := serv.ledgerRepo.LastCompletionEntry(ctx, q, userID, taskID)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		revoked := 0
		if entry != nil {
			revoked = entry.Amount
		}
		user, err := serv.usersRepo.GetProgressForUpdate(ctx, q, userID)
		if err != nil {
			if errors.Is(err, errorvalues.ErrUserNotFound) {
				return err
			}
			return errors.New("repository error: " + err.Error())
		}
		// XP and level stay untouched: resets reverse points only. A user who
		// cycles complete/reset keeps the level, matching the historical
		// behavior this engine reproduces.
		err = serv.usersRepo.UpdateProgress(
			ctx, q, userID,
			max(0, user.AvailablePoints-revoked),
			max(0, user.TotalPoints-revoked),
			user.Level,
			user.XP,
		)
		if err != nil {
			return errors.New("repository error: " + err.Error())
		}
		if revoked != 0 {
			err = serv.ledgerRepo.Create(ctx, q, &entity.PointLedgerEntry{
				UserID: userID,
				Amount: -revoked,
				Reason: entity.ReasonTaskReset,
				TaskID: &taskID,
			})
			if err != nil {
				return errors.New("repository error: " + err.Error())
			}
		}
		if err := serv.tasksRepo.SetStatus(ctx, q, taskID, entity.TaskStatusPending, nil); err != nil {
			return errors.New("repository error: " + err.Error())
		}
		result.PointsRevoked = revoked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
