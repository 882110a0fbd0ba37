package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	savedsvc "github.com/viraj01032007/setmystay/backend/internal/services/saved"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type SavedHandler struct {
	saved *savedsvc.Service
}

func NewSavedHandler(saved *savedsvc.Service) *SavedHandler {
	return &SavedHandler{saved: saved}
}

func (h *SavedHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h.saved == nil {
		writeInternal(w, "SAVED_SERVICE_UNAVAILABLE", "saved service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	listingID := chi.URLParam(r, "listingID")
	savedNow, err := h.saved.Toggle(r.Context(), identity.UserID, listingID)
	if err != nil {
		switch {
		case errors.Is(err, savedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		case errors.Is(err, pgrepo.ErrListingNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to toggle saved listing")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SavedToggleResponse{
		ListingID: listingID,
		Saved:     savedNow,
	})
}

func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.saved == nil {
		writeInternal(w, "SAVED_SERVICE_UNAVAILABLE", "saved service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	records, err := h.saved.List(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list saved listings")
		return
	}

	out := make([]dto.ListingResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.ListingResponse{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Title:     rec.Title,
			City:      rec.City,
			Rent:      rec.Rent,
			Status:    rec.Status,
			Saved:     true,
			CreatedAt: rec.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.SavedListResponse{Listings: out})
}
