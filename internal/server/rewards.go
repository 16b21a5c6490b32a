package server

import (
	"net/http"
	"strings"

	"greencycle/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleRewardCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	catalog, err := s.ledger.Catalog(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, catalog)
}

func (s *Service) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	itemID := strings.TrimSpace(flow.Param(r.Context(), "itemID"))
	if itemID == "" {
		s.respondError(w, types.ErrRewardNotFound)
		return
	}

	purchase, err := s.ledger.Redeem(ctx, session, itemID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, purchase)
}

func (s *Service) handlePurchaseHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	purchases, err := s.ledger.History(ctx, session)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, purchases)
}
