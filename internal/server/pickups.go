package server

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"greencycle/internal/pickups"
	"greencycle/internal/storage"
	"greencycle/internal/utils"
	"greencycle/pkg/types"

	"github.com/alexedwards/flow"
)

type schedulePickupInput struct {
	ItemName            string `form:"item_name" json:"item_name"`
	RequestedPickupTime string `form:"requested_pickup_time" json:"requested_pickup_time"`
}

type verifyPickupInput struct {
	Notes string `form:"notes" json:"notes"`
}

// pickupView decorates a pickup with render-time fields: the public
// image URL and, for pending pickups, the countdown to the requested
// slot. Expiry is cosmetic; nothing is enforced server-side.
type pickupView struct {
	*types.Pickup
	ImageURL  string             `json:"image_url,omitempty"`
	Countdown *pickups.Countdown `json:"countdown,omitempty"`
}

func (s *Service) pickupView(pickup *types.Pickup) pickupView {
	view := pickupView{Pickup: pickup}

	if pickup.ImageKey != nil {
		view.ImageURL = s.imageStore.PublicURL(*pickup.ImageKey)
	}

	if pickup.Status == types.PickupStatusPending {
		countdown := pickups.RemainingTime(pickup, time.Now())
		view.Countdown = &countdown
	}

	return view
}

func (s *Service) pickupViews(list []*types.Pickup) []pickupView {
	views := make([]pickupView, 0, len(list))
	for _, pickup := range list {
		views = append(views, s.pickupView(pickup))
	}
	return views
}

func (s *Service) handleSchedulePickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	var input schedulePickupInput
	if err := s.decodeRequest(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	requestedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(input.RequestedPickupTime))
	if err != nil {
		s.respondError(w, fmt.Errorf("%w: requested_pickup_time must be an RFC 3339 timestamp", types.ErrValidation))
		return
	}

	pickup, err := s.coordinator.Schedule(ctx, session, types.NewPickup{
		ItemName:            input.ItemName,
		RequestedPickupTime: requestedAt,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, s.pickupView(pickup))
}

func (s *Service) handleAvailablePickups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	available, err := s.coordinator.Available(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.pickupViews(available))
}

func (s *Service) handleMyPickups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	mine, err := s.coordinator.ForSession(ctx, session)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.pickupViews(mine))
}

func (s *Service) handleGetPickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pickupID := strings.TrimSpace(flow.Param(r.Context(), "pickupID"))
	if pickupID == "" {
		s.respondError(w, types.ErrPickupNotFound)
		return
	}

	pickup, err := s.coordinator.Pickup(ctx, pickupID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.pickupView(pickup))
}

func (s *Service) handleAcceptPickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	pickupID := strings.TrimSpace(flow.Param(r.Context(), "pickupID"))

	pickup, err := s.coordinator.Accept(ctx, session, pickupID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.pickupView(pickup))
}

func (s *Service) handleVerifyPickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	pickupID := strings.TrimSpace(flow.Param(r.Context(), "pickupID"))

	var input verifyPickupInput
	if r.ContentLength > 0 {
		if err := s.decodeRequest(r, &input); err != nil {
			s.respondError(w, err)
			return
		}
	}

	pickup, err := s.coordinator.Verify(ctx, session, pickupID, input.Notes)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, s.pickupView(pickup))
}

func (s *Service) handleUploadPickupImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("session not found in context")
		s.internalServerError(w)
		return
	}

	pickupID := strings.TrimSpace(flow.Param(r.Context(), "pickupID"))

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		s.respondError(w, fmt.Errorf("%w: image upload too large or malformed", types.ErrValidation))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.respondError(w, fmt.Errorf("%w: an image file is required", types.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.respondError(w, fmt.Errorf("%w: only image uploads are accepted", types.ErrValidation))
		return
	}

	key := fmt.Sprintf("ewaste-images/%s/%s-%s", session.UserID, utils.NanoIDSize(12), path.Base(header.Filename))

	if _, err := s.imageStore.Upload(ctx, key, file, header.Size, contentType); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.coordinator.AttachImage(ctx, session, pickupID, key); err != nil {
		// The pickup refused the image; do not leave the blob orphaned.
		if deleteErr := s.imageStore.Delete(ctx, key); deleteErr != nil {
			s.logger.WithError(deleteErr).WithField("image_key", key).Warn("failed to clean up orphaned image")
		}
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"image_key": key,
		"image_url": s.imageStore.PublicURL(key),
	})
}
