package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/service"
	"github.com/taskquest/backend/pkg/entity"
	"github.com/taskquest/backend/pkg/httputil"
)

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
}

type GetProjectsResponse struct {
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Projects []*entity.Project `json:"projects"`
}

func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create project error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateProjectRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create project error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	project, err := s.projectService.CreateProject(ctx, uid, service.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			logger.Error("create project error: unexist owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create project: user doesn't exists", nil)
			return
		}
		logger.Error("create project error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating project", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, project)
	logger.Info("project created")
}

func (s *Server) GetProjects(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	_, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get projects error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	projects, err := s.projectService.GetProjects(ctx, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error("getting projects list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting projects list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetProjectsResponse{
		Page:     page,
		Limit:    limit,
		Projects: projects,
	})
	logger.Info("projects provided")
}

func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	_, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get project error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("get project error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid project id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	project, err := s.projectService.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrProjectNotFound) {
			logger.Error("get project error: unexist project")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "project doesn't exist", nil)
			return
		}
		logger.Error("get project error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting project", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, project)
	logger.Info("project provided")
}
