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

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"desc"`
	ProjectID   *string    `json:"project_id,omitempty"`
	BasePoints  int        `json:"base_points"`
	BonusXP     int        `json:"bonus_xp"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Assignees   []string   `json:"assignees"`
}

type GetTasksResponse struct {
	UserID string         `json:"uid"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Tasks  []*entity.Task `json:"tasks"`
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	_, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateTaskRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create task error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	serviceReq := service.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		BasePoints:  req.BasePoints,
		BonusXP:     req.BonusXP,
		Deadline:    req.Deadline,
	}
	if req.ProjectID != nil {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			logger.Error("create task error: invalid project id")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid project id", nil)
			return
		}
		serviceReq.ProjectID = &projectID
	}
	for _, raw := range req.Assignees {
		assignee, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("create task error: invalid assignee id")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid assignee id", nil)
			return
		}
		serviceReq.Assignees = append(serviceReq.Assignees, assignee)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	task, err := s.taskService.CreateTask(ctx, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrProjectNotFound):
			logger.Error("create task error: unexist project")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "project doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create task error: unexist assignee")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "assignee doesn't exist", nil)
		default:
			logger.Error("create task error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating task", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, task)
	logger.Info("task created")
}

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get tasks error: unauthorized")
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
	var status *entity.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := entity.TaskStatus(raw)
		switch st {
		case entity.TaskStatusPending, entity.TaskStatusInProgress, entity.TaskStatusCompleted:
			status = &st
		default:
			logger.Error("get tasks error: invalid status filter")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid status filter", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	tasks, err := s.taskService.GetUserTasks(ctx, uid, status, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error("getting tasks list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting tasks list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetTasksResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Tasks:  tasks,
	})
	logger.Info("tasks provided")
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	_, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("get task error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	task, err := s.taskService.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			logger.Error("get task error: unexist task")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task doesn't exist", nil)
			return
		}
		logger.Error("get task error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting task", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, task)
	logger.Info("task provided")
}

func (s *Server) CompleteTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("complete task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("complete task error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	result, err := s.taskService.CompleteTask(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTaskNotFound):
			logger.Error("complete task error: unexist task")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrNotAssignee):
			logger.Error("complete task error: user is not an assignee")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "task is not assigned to you", nil)
		case errors.Is(err, errorvalues.ErrTaskAlreadyCompleted):
			logger.Error("complete task error: already completed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "task is already completed", nil)
		default:
			logger.Error("complete task error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing task", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("task completed")
}

func (s *Server) ResetTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("reset task error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("reset task error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	result, err := s.taskService.ResetTask(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrTaskNotFound):
			logger.Error("reset task error: unexist task")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "task doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrNotAssignee):
			logger.Error("reset task error: user is not an assignee")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "task is not assigned to you", nil)
		case errors.Is(err, errorvalues.ErrTaskNotCompleted):
			logger.Error("reset task error: task is not completed")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "task is not completed", nil)
		default:
			logger.Error("reset task error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while resetting task", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, result)
	logger.Info("task reset")
}
