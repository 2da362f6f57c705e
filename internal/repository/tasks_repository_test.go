package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

var taskColumns = []string{"id", "project_id", "title", "description", "base_points", "bonus_xp", "deadline", "status", "completed_at", "created_at", "updated_at"}

func taskRow(task *entity.Task) *pgxmock.Rows {
	return pgxmock.NewRows(taskColumns).AddRow(
		task.ID, task.ProjectID, task.Title, task.Description, task.BasePoints,
		task.BonusXP, task.Deadline, task.Status, task.CompletedAt, task.CreatedAt, task.UpdatedAt,
	)
}

func TestCreateTask(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewTasksRepo(mock)
	projectID := uuid.New()
	assignee := uuid.New()
	task := entity.Task{
		ProjectID:   &projectID,
		Title:       "test_task",
		Description: "blah blah blah",
		BasePoints:  100,
		BonusXP:     10,
		Assignees:   []uuid.UUID{assignee},
	}
	tid := uuid.New()
	ctx := context.Background()
	insertQuery := regexp.QuoteMeta(`INSERT INTO tasks (project_id, title, description, base_points, bonus_xp, deadline) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`)
	assigneeQuery := regexp.QuoteMeta(`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2);`)
	t.Run("successfully created", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(insertQuery).
			WithArgs(task.ProjectID, task.Title, task.Description, task.BasePoints, task.BonusXP, task.Deadline).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tid))
		mock.ExpectExec(assigneeQuery).
			WithArgs(tid, assignee).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		id, err := repo.Create(ctx, &task)
		assert.NoError(t, err)
		assert.Equal(t, tid, id)
	})
	t.Run("created without project", func(t *testing.T) {
		standalone := task
		standalone.ProjectID = nil
		mock.ExpectBegin()
		mock.ExpectQuery(insertQuery).
			WithArgs((*uuid.UUID)(nil), task.Title, task.Description, task.BasePoints, task.BonusXP, task.Deadline).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tid))
		mock.ExpectExec(assigneeQuery).
			WithArgs(tid, assignee).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		id, err := repo.Create(ctx, &standalone)
		assert.NoError(t, err)
		assert.Equal(t, tid, id)
	})
	t.Run("unexist project FK violation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(insertQuery).
			WithArgs(task.ProjectID, task.Title, task.Description, task.BasePoints, task.BonusXP, task.Deadline).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()
		_, err := repo.Create(ctx, &task)
		assert.ErrorIs(t, err, errorvalues.ErrProjectNotFound)
	})
	t.Run("unexist assignee FK violation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(insertQuery).
			WithArgs(task.ProjectID, task.Title, task.Description, task.BasePoints, task.BonusXP, task.Deadline).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tid))
		mock.ExpectExec(assigneeQuery).
			WithArgs(tid, assignee).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()
		_, err := repo.Create(ctx, &task)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("nil task rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, nil)
		assert.Error(t, err)
	})
}

func TestGetTaskByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewTasksRepo(mock)
	projectID := uuid.New()
	assignee := uuid.New()
	task := entity.Task{
		ID:         uuid.New(),
		ProjectID:  &projectID,
		Title:      "test_task",
		BasePoints: 100,
		BonusXP:    10,
		Status:     entity.TaskStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT id, project_id, title, description, base_points, bonus_xp, deadline, status, completed_at, created_at, updated_at FROM tasks WHERE id = $1;`)
	assigneeQuery := regexp.QuoteMeta(`SELECT user_id FROM task_assignees WHERE task_id = $1;`)
	t.Run("found with assignees", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(task.ID).WillReturnRows(taskRow(&task))
		mock.ExpectQuery(assigneeQuery).WithArgs(task.ID).WillReturnRows(
			pgxmock.NewRows([]string{"user_id"}).AddRow(assignee),
		)
		result, err := repo.GetByID(ctx, task.ID)
		assert.NoError(t, err)
		assert.Equal(t, task.Title, result.Title)
		assert.Equal(t, []uuid.UUID{assignee}, result.Assignees)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(task.ID).WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, errorvalues.ErrTaskNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(task.ID).WillReturnError(errors.New("db error"))
		_, err := repo.GetByID(ctx, task.ID)
		assert.Error(t, err)
	})
}

func TestSetTaskStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewTasksRepo(mock)
	tid := uuid.New()
	ctx := context.Background()
	query := regexp.QuoteMeta(`UPDATE tasks SET status = $1, completed_at = $2, updated_at = now() WHERE id = $3;`)
	t.Run("completed", func(t *testing.T) {
		completedAt := time.Now()
		mock.ExpectExec(query).
			WithArgs(entity.TaskStatusCompleted, &completedAt, tid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.SetStatus(ctx, mock, tid, entity.TaskStatusCompleted, &completedAt)
		assert.NoError(t, err)
	})
	t.Run("reset clears completion time", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entity.TaskStatusPending, (*time.Time)(nil), tid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.SetStatus(ctx, mock, tid, entity.TaskStatusPending, nil)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(entity.TaskStatusPending, (*time.Time)(nil), tid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.SetStatus(ctx, mock, tid, entity.TaskStatusPending, nil)
		assert.ErrorIs(t, err, errorvalues.ErrTaskNotFound)
	})
}

func TestStatsByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewTasksRepo(mock)
	uid := uuid.New()
	ctx := context.Background()
	query := regexp.QuoteMeta(`WHERE ta.user_id = $1 AND t.status = 'completed';`)
	t.Run("counters returned", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid).WillReturnRows(
			pgxmock.NewRows([]string{"count", "early", "team"}).AddRow(12, 4, 2),
		)
		completed, early, team, err := repo.StatsByUser(ctx, uid)
		assert.NoError(t, err)
		assert.Equal(t, 12, completed)
		assert.Equal(t, 4, early)
		assert.Equal(t, 2, team)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(uid).WillReturnError(errors.New("db error"))
		_, _, _, err := repo.StatsByUser(ctx, uid)
		assert.Error(t, err)
	})
}
