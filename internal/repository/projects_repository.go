package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/pkg/entity"
)

type ProjectsRepository struct {
	conn PgConnection
}

func NewProjectsRepo(conn PgConnection) *ProjectsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for projectsRepo: " + err.Error())
	}
	return &ProjectsRepository{
		conn: conn,
	}
}

func (pr *ProjectsRepository) Create(ctx context.Context, project *entity.Project) (uuid.UUID, error) {
	if project == nil {
		return uuid.UUID{}, errors.New("project is nil")
	}
	var id uuid.UUID
	row := pr.conn.QueryRow(
		ctx,
		`INSERT INTO projects (owner_id, name, description) VALUES ($1, $2, $3) RETURNING id;`,
		project.OwnerID,
		project.Name,
		project.Description,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrUserNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating project error: " + err.Error())
	}
	return id, nil
}

func (pr *ProjectsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	row := pr.conn.QueryRow(ctx, `SELECT id, owner_id, name, description, created_at FROM projects WHERE id = $1;`, id)
	if err := row.Scan(&project.ID, &project.OwnerID, &project.Name, &project.Description, &project.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrProjectNotFound
		}
		return nil, errors.New("searching project by id error: " + err.Error())
	}
	return &project, nil
}

func (pr *ProjectsRepository) GetAll(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	rows, err := pr.conn.Query(
		ctx,
		`SELECT id, owner_id, name, description, created_at FROM projects ORDER BY created_at DESC LIMIT $1 OFFSET $2;`,
		limit,
		offset,
	)
	if err != nil {
		return nil, errors.New("getting projects error: " + err.Error())
	}
	defer rows.Close()
	result := make([]*entity.Project, 0, limit)
	for rows.Next() {
		project := entity.Project{}
		if err := rows.Scan(&project.ID, &project.OwnerID, &project.Name, &project.Description, &project.CreatedAt); err != nil {
			return nil, errors.New("project row parsing error: " + err.Error())
		}
		result = append(result, &project)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected project rows error: " + rows.Err().Error())
	}
	return result, nil
}
