package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"greencycle/pkg/types"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) respondErrorCode(w http.ResponseWriter, status int, code, message, action string) {
	s.respondJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Action:  action,
	}})
}

// respondError maps the typed error taxonomy onto HTTP statuses.
// Everything unmapped is logged and hidden behind a generic 500.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		s.respondErrorCode(w, http.StatusBadRequest, "validation_error", err.Error(), "Correct the input and try again.")
	case errors.Is(err, types.ErrUnauthorized):
		s.respondErrorCode(w, http.StatusForbidden, "unauthorized", err.Error(), "")
	case errors.Is(err, types.ErrPickupNotFound),
		errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrRewardNotFound):
		s.respondErrorCode(w, http.StatusNotFound, "not_found", err.Error(), "")
	case errors.Is(err, types.ErrStateConflict):
		s.respondErrorCode(w, http.StatusConflict, "state_conflict", err.Error(), "Refresh the list; this pickup has already moved on.")
	case errors.Is(err, types.ErrInsufficientPoints):
		s.respondErrorCode(w, http.StatusConflict, "insufficient_points", err.Error(), "Verify completed pickups to earn more points.")
	case errors.Is(err, types.ErrAssistantUnavailable):
		s.respondErrorCode(w, http.StatusBadGateway, "assistant_unavailable", "The assistant is unavailable right now.", "Try again in a moment.")
	default:
		s.logger.WithError(err).Error("unhandled error")
		s.internalServerError(w)
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.respondErrorCode(w, http.StatusInternalServerError, "internal", "Something went wrong.", "Try again in a moment.")
}

// decodeRequest reads a request body into dst, accepting either JSON
// or form encoding.
func (s *Service) decodeRequest(r *http.Request, dst any) error {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("%w: malformed JSON body", types.ErrValidation)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: malformed form body", types.ErrValidation)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("%w: malformed form body", types.ErrValidation)
	}
	return nil
}
