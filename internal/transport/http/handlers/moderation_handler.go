package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	listingsvc "github.com/viraj01032007/setmystay/backend/internal/services/listings"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

// ModerationHandler serves the staff queue. Routes are mounted behind
// RequireRole(STAFF, ADMIN).
type ModerationHandler struct {
	listings *listingsvc.Service
}

func NewModerationHandler(listings *listingsvc.Service) *ModerationHandler {
	return &ModerationHandler{listings: listings}
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, true)
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, false)
}

func (h *ModerationHandler) moderate(w http.ResponseWriter, r *http.Request, approve bool) {
	if h.listings == nil {
		writeInternal(w, "LISTINGS_SERVICE_UNAVAILABLE", "listings service is unavailable")
		return
	}

	listingID := chi.URLParam(r, "listingID")

	var (
		err     error
		listing = struct {
			ID     string
			Status string
		}{}
	)
	if approve {
		res, approveErr := h.listings.Approve(r.Context(), listingID)
		err = approveErr
		listing.ID, listing.Status = res.ID, string(res.Status)
	} else {
		res, rejectErr := h.listings.Reject(r.Context(), listingID)
		err = rejectErr
		listing.ID, listing.Status = res.ID, string(res.Status)
	}

	if err != nil {
		switch {
		case errors.Is(err, listingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		case errors.Is(err, listingsvc.ErrNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to moderate listing")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerateResponse{
		ID:     listing.ID,
		Status: listing.Status,
	})
}
