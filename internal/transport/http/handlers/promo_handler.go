package handlers

import (
	"net/http"

	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	promosvc "github.com/viraj01032007/setmystay/backend/internal/services/promos"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type PromoHandler struct {
	promos *promosvc.Service
}

func NewPromoHandler(promos *promosvc.Service) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// Fetch returns the upsell card the first time a session asks for it.
// Subsequent calls in the same session get show=false.
func (h *PromoHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if h.promos == nil {
		writeInternal(w, "PROMO_SERVICE_UNAVAILABLE", "promo service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	promo, show := h.promos.Fetch(r.Context(), identity.SID)
	if !show {
		httperrors.Write(w, http.StatusOK, dto.PromoResponse{Show: false})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PromoResponse{
		Show:     true,
		Title:    promo.Title,
		Body:     promo.Body,
		ShowPath: promo.ShowPath,
		DelayMS:  promo.Delay.Milliseconds(),
	})
}
