package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	entsvc "github.com/viraj01032007/setmystay/backend/internal/services/entitlements"
	listingsvc "github.com/viraj01032007/setmystay/backend/internal/services/listings"
	savedsvc "github.com/viraj01032007/setmystay/backend/internal/services/saved"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type ListingsHandler struct {
	listings     *listingsvc.Service
	entitlements *entsvc.Service
	saved        *savedsvc.Service
}

func NewListingsHandler(listings *listingsvc.Service, entitlements *entsvc.Service, saved *savedsvc.Service) *ListingsHandler {
	return &ListingsHandler{
		listings:     listings,
		entitlements: entitlements,
		saved:        saved,
	}
}

func (h *ListingsHandler) Browse(w http.ResponseWriter, r *http.Request) {
	if h.listings == nil {
		writeInternal(w, "LISTINGS_SERVICE_UNAVAILABLE", "listings service is unavailable")
		return
	}

	query := listingsvc.BrowseQuery{
		Kind:    r.URL.Query().Get("kind"),
		City:    r.URL.Query().Get("city"),
		RentMin: queryInt(r, "rent_min"),
		RentMax: queryInt(r, "rent_max"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}

	results, err := h.listings.Browse(r.Context(), query)
	if err != nil {
		if errors.Is(err, listingsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid browse query")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to browse listings")
		return
	}

	savedSet := h.savedSet(r)
	unlockedSet := h.unlockedSet(r)

	out := make([]dto.ListingResponse, 0, len(results))
	for _, listing := range results {
		out = append(out, listingResponse(listing, savedSet[listing.ID], unlockedSet[listing.ID], false))
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	httperrors.Write(w, http.StatusOK, dto.ListingsResponse{
		Listings: out,
		Page:     page,
		PerPage:  len(out),
	})
}

func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.listings == nil {
		writeInternal(w, "LISTINGS_SERVICE_UNAVAILABLE", "listings service is unavailable")
		return
	}

	var viewerID int64
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewerID = identity.UserID
	}

	view, err := h.listings.Get(r.Context(), viewerID, chi.URLParam(r, "listingID"))
	if err != nil {
		switch {
		case errors.Is(err, listingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		case errors.Is(err, listingsvc.ErrNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load listing")
		}
		return
	}

	savedSet := h.savedSet(r)
	httperrors.Write(w, http.StatusOK, listingResponse(view.Listing, savedSet[view.Listing.ID], view.ContactVisible, view.ContactVisible))
}

func (h *ListingsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.listings == nil {
		writeInternal(w, "LISTINGS_SERVICE_UNAVAILABLE", "listings service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SubmitListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	listing, err := h.listings.Submit(r.Context(), identity.UserID, listingsvc.SubmitInput{
		Kind:         req.Kind,
		Title:        req.Title,
		City:         req.City,
		Rent:         req.Rent,
		Description:  req.Description,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		if errors.Is(err, listingsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid listing payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit listing")
		return
	}

	httperrors.Write(w, http.StatusCreated, listingResponse(listing, false, true, true))
}

// Unlock spends a credit to reveal the listing's contact. Running out of
// credits is a 402 with PURCHASE_REQUIRED so the client can route to the
// plans screen.
func (h *ListingsHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if h.entitlements == nil || h.listings == nil {
		writeInternal(w, "ENTITLEMENTS_SERVICE_UNAVAILABLE", "entitlements service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	listingID := chi.URLParam(r, "listingID")
	result, err := h.entitlements.Unlock(r.Context(), identity.UserID, listingID)
	if err != nil {
		switch {
		case errors.Is(err, entsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		case errors.Is(err, entsvc.ErrListingNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
		case errors.Is(err, entsvc.ErrPurchaseRequired):
			httperrors.Write(w, http.StatusPaymentRequired, httperrors.APIError{
				Code:    "PURCHASE_REQUIRED",
				Message: "no unlock credits left, purchase a plan to continue",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unlock listing")
		}
		return
	}

	view, err := h.listings.Get(r.Context(), identity.UserID, listingID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load unlocked listing")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnlockResponse{
		Charged: result.Charged,
		Contact: dto.ContactResponse{
			Name:  view.Listing.Contact.Name,
			Phone: view.Listing.Contact.Phone,
			Email: view.Listing.Contact.Email,
		},
		Entitlements: entitlementsResponse(result.Snapshot),
	})
}

func (h *ListingsHandler) savedSet(r *http.Request) map[string]bool {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || h.saved == nil {
		return nil
	}
	set, err := h.saved.IDs(r.Context(), identity.UserID)
	if err != nil {
		return nil
	}
	return set
}

func (h *ListingsHandler) unlockedSet(r *http.Request) map[string]bool {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || h.entitlements == nil {
		return nil
	}
	snapshot, err := h.entitlements.Get(r.Context(), identity.UserID)
	if err != nil {
		return nil
	}
	set := make(map[string]bool, len(snapshot.UnlockedIDs))
	for _, id := range snapshot.UnlockedIDs {
		set[id] = true
	}
	return set
}

func listingResponse(listing model.Listing, saved, unlocked, withContact bool) dto.ListingResponse {
	out := dto.ListingResponse{
		ID:          listing.ID,
		Kind:        string(listing.Kind),
		Title:       listing.Title,
		City:        listing.City,
		Rent:        listing.Rent,
		Description: listing.Description,
		Status:      string(listing.Status),
		Saved:       saved,
		Unlocked:    unlocked,
		CreatedAt:   listing.CreatedAt,
	}
	if withContact {
		out.Contact = &dto.ContactResponse{
			Name:  listing.Contact.Name,
			Phone: listing.Contact.Phone,
			Email: listing.Contact.Email,
		}
	}
	return out
}

func entitlementsResponse(snapshot entsvc.Snapshot) dto.EntitlementsResponse {
	ids := snapshot.UnlockedIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.EntitlementsResponse{
		UnlockCredits: snapshot.UnlockCredits,
		IsUnlimited:   snapshot.IsUnlimited,
		UnlockedIDs:   ids,
	}
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
