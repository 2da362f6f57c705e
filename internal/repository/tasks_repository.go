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

type TasksRepository struct {
	conn PgConnection
}

func NewTasksRepo(conn PgConnection) *TasksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tasksRepo: " + err.Error())
	}
	return &TasksRepository{
		conn: conn,
	}
}

func (tr *TasksRepository) Create(ctx context.Context, task *entity.Task) (uuid.UUID, error) {
	if task == nil {
		return uuid.UUID{}, errors.New("task is nil")
	}
	tx, err := tr.conn.Begin(ctx)
	if err != nil {
		return uuid.UUID{}, errors.New("beginning tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	var id uuid.UUID
	row := tx.QueryRow(
		ctx,
		`INSERT INTO tasks (project_id, title, description, base_points, bonus_xp, deadline) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		task.ProjectID,
		task.Title,
		task.Description,
		task.BasePoints,
		task.BonusXP,
		task.Deadline,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrProjectNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating task error: " + err.Error())
	}
	for _, assignee := range task.Assignees {
		_, err := tx.Exec(ctx, `INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2);`, id, assignee)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23503":
					return uuid.UUID{}, errorvalues.ErrUserNotFound
				}
			}
			return uuid.UUID{}, errors.New("assigning task error: " + err.Error())
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.UUID{}, errors.New("committing task creation error: " + err.Error())
	}
	return id, nil
}

func (tr *TasksRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return tr.getByID(ctx, tr.conn, id, "")
}

// GetForUpdate locks the task row so status transitions don't race each other.
func (tr *TasksRepository) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*entity.Task, error) {
	return tr.getByID(ctx, q, id, " FOR UPDATE")
}

func (tr *TasksRepository) getByID(ctx context.Context, q Querier, id uuid.UUID, suffix string) (*entity.Task, error) {
	var task entity.Task
	row := q.QueryRow(
		ctx,
		`SELECT id, project_id, title, description, base_points, bonus_xp, deadline, status, completed_at, created_at, updated_at FROM tasks WHERE id = $1`+suffix+`;`,
		id,
	)
	if err := scanTask(row, &task); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTaskNotFound
		}
		return nil, errors.New("searching task by id error: " + err.Error())
	}
	rows, err := q.Query(ctx, `SELECT user_id FROM task_assignees WHERE task_id = $1;`, id)
	if err != nil {
		return nil, errors.New("getting task assignees error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var assignee uuid.UUID
		if err := rows.Scan(&assignee); err != nil {
			return nil, errors.New("assignee row parsing error: " + err.Error())
		}
		task.Assignees = append(task.Assignees, assignee)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected assignee rows error: " + rows.Err().Error())
	}
	return &task, nil
}

func (tr *TasksRepository) GetByAssignee(ctx context.Context, uid uuid.UUID, status *entity.TaskStatus, limit, offset int) ([]*entity.Task, error) {
	query := `SELECT t.id, t.project_id, t.title, t.description, t.base_points, t.bonus_xp, t.deadline, t.status, t.completed_at, t.created_at, t.updated_at
		FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id
		WHERE ta.user_id = $1`
	args := []any{uid}
	if status != nil {
		query += ` AND t.status = $2 ORDER BY t.created_at DESC LIMIT $3 OFFSET $4;`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY t.created_at DESC LIMIT $2 OFFSET $3;`
		args = append(args, limit, offset)
	}
	rows, err := tr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("getting tasks by assignee error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Task, 0, limit)
	for rows.Next() {
		task := entity.Task{}
		if err := scanTask(rows, &task); err != nil {
			return nil, errors.New("task row parsing error: " + err.Error())
		}
		result = append(result, &task)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected task rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (tr *TasksRepository) SetStatus(ctx context.Context, q Querier, id uuid.UUID, status entity.TaskStatus, completedAt *time.Time) error {
	ct, err := q.Exec(
		ctx,
		`UPDATE tasks SET status = $1, completed_at = $2, updated_at = now() WHERE id = $3;`,
		status,
		completedAt,
		id,
	)
	if err != nil {
		return errors.New("updating task status error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	return nil
}

// StatsByUser counts the task-derived statistics badge conditions check:
// completed tasks, completed tasks that carried a deadline, and completed
// tasks shared with other assignees.
func (tr *TasksRepository) StatsByUser(ctx context.Context, uid uuid.UUID) (completed, early, team int, err error) {
	row := tr.conn.QueryRow(
		ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE t.deadline IS NOT NULL),
			COUNT(*) FILTER (WHERE (SELECT COUNT(*) FROM task_assignees a WHERE a.task_id = t.id) > 1)
		FROM tasks t JOIN task_assignees ta ON ta.task_id = t.id
		WHERE ta.user_id = $1 AND t.status = 'completed';`,
		uid,
	)
	if err := row.Scan(&completed, &early, &team); err != nil {
		return 0, 0, 0, errors.New("counting task stats error: " + err.Error())
	}
	return completed, early, team, nil
}

func scanTask(row pgx.Row, task *entity.Task) error {
	return row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.BasePoints,
		&task.BonusXP,
		&task.Deadline,
		&task.Status,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
