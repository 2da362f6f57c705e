package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/pkg/httputil"
)

func (s *Server) GetRewards(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	_, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get rewards error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	rewards, err := s.rewardService.GetCatalog(ctx)
	if err != nil {
		logger.Error("get rewards error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting reward catalog", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"rewards": rewards})
	logger.Info("reward catalog provided")
}

func (s *Server) RedeemReward(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("redeem reward error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("redeem reward error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reward id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	redemption, err := s.rewardService.Redeem(ctx, uid, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRewardNotFound):
			logger.Error("redeem reward error: unexist reward")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reward doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrRewardInactive):
			logger.Error("redeem reward error: inactive reward")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "reward is not available", nil)
		case errors.Is(err, errorvalues.ErrInsufficientBalance):
			logger.Error("redeem reward error: insufficient balance")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "not enough available points", nil)
		default:
			logger.Error("redeem reward error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while redeeming reward", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, redemption)
	logger.Info("reward redeemed")
}

func (s *Server) ApproveRedemption(w http.ResponseWriter, r *http.Request) {
	s.resolveRedemption(w, r, true)
}

func (s *Server) RejectRedemption(w http.ResponseWriter, r *http.Request) {
	s.resolveRedemption(w, r, false)
}

func (s *Server) resolveRedemption(w http.ResponseWriter, r *http.Request, approve bool) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("resolve redemption error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("resolve redemption error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid redemption id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if approve {
		err = s.rewardService.Approve(ctx, uid, id)
	} else {
		err = s.rewardService.Reject(ctx, uid, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrNotManager):
			logger.Error("resolve redemption error: user is not a manager")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "manager rights required", nil)
		case errors.Is(err, errorvalues.ErrRedemptionNotFound):
			logger.Error("resolve redemption error: unexist redemption")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "redemption doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrRedemptionResolved):
			logger.Error("resolve redemption error: already resolved")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "redemption is already resolved", nil)
		default:
			logger.Error("resolve redemption error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while resolving redemption", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("redemption resolved")
}
