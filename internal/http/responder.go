package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/shower-tracker/internal/application"
	"github.com/example/shower-tracker/internal/logging"
)

var errBadRequestBody = errors.New("invalid request body")

type errorResponse struct {
	ErrorCode string            `json:"errorCode,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type responder struct {
	logger zerolog.Logger
}

func newResponder(logger zerolog.Logger) responder {
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger := r.loggerFor(ctx)
		logger.Error().Err(err).Msg("encode response failed")
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
		logger := r.loggerFor(ctx)
		logger.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors onto HTTP statuses: forbidden
// actors to 403, missing resources to 404, contested state to 409, and
// field issues to 422.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		vErr     *application.ValidationError
		occupied *application.OccupiedError
		cooldown *application.CooldownError
		rejected *application.ClaimRejectedError
	)
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "you may not perform this action",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "resource not found"})
	case errors.Is(err, application.ErrShowerFree):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SHOWER_FREE",
			Message:   "nobody is showering",
		})
	case errors.As(err, &occupied):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "OCCUPIED",
			Message:   occupied.By + " is in the shower",
		})
	case errors.As(err, &cooldown):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TOO_SHORT",
			Message:   "that was quick, wait a moment before stopping",
		})
	case errors.As(err, &rejected):
		code := "SLOT_CONFLICT"
		message := "that time overlaps an existing slot"
		if rejected.Reason == "past_time" {
			code = "SLOT_PAST"
			message = "that time has already passed today"
		}
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: code, Message: message})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "invalid input",
			Errors:  vErr.FieldErrors,
		})
	default:
		logger := r.loggerFor(ctx)
		logger.Error().Err(err).Msg("internal error")
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func (r responder) loggerFor(ctx context.Context) zerolog.Logger {
	if logger := logging.FromContext(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return r.logger
}
