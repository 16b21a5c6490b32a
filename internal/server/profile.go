package server

import (
	"fmt"
	"net/http"
	"strings"

	"greencycle/pkg/types"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	user, err := s.userRepo.User(ctx, session.UserID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	var update types.UpdateProfile
	if err := s.decodeRequest(r, &update); err != nil {
		s.respondError(w, err)
		return
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		s.respondError(w, fmt.Errorf("%w: name cannot be empty", types.ErrValidation))
		return
	}
	if update.ContactNumber != nil && !contactNumberPattern.MatchString(strings.TrimSpace(*update.ContactNumber)) {
		s.respondError(w, fmt.Errorf("%w: enter a 10-digit phone number without spaces or symbols", types.ErrValidation))
		return
	}

	if err := s.userRepo.UpdateProfile(ctx, session.UserID, update); err != nil {
		s.respondError(w, err)
		return
	}

	user, err := s.userRepo.User(ctx, session.UserID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}
