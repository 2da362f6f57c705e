package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

type ProjectService struct {
	repo repository.ProjectsRepositoryI
}

func NewProjectService(projectsRepo repository.ProjectsRepositoryI) *ProjectService {
	if projectsRepo == nil {
		log.Fatal("on project service provided nil repo")
	}
	return &ProjectService{
		repo: projectsRepo,
	}
}

func (serv *ProjectService) CreateProject(ctx context.Context, ownerID uuid.UUID, req CreateProjectRequest) (*entity.Project, error) {
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
	project := &entity.Project{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}
	id, err := serv.repo.Create(ctx, project)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	created, err := serv.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return created, nil
}

func (serv *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := serv.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrProjectNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return project, nil
}

func (serv *ProjectService) GetProjects(ctx context.Context, opts PaginationOpts) ([]*entity.Project, error) {
	projects, err := serv.repo.GetAll(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return projects, nil
}
