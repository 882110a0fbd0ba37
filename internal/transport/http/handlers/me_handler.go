package handlers

import (
	"net/http"

	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	entsvc "github.com/viraj01032007/setmystay/backend/internal/services/entitlements"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type MeHandler struct {
	entitlements *entsvc.Service
}

func NewMeHandler(entitlements *entsvc.Service) *MeHandler {
	return &MeHandler{entitlements: entitlements}
}

func (h *MeHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	if h.entitlements == nil {
		writeInternal(w, "ENTITLEMENTS_SERVICE_UNAVAILABLE", "entitlements service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	snapshot, err := h.entitlements.Get(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load entitlements")
		return
	}

	httperrors.Write(w, http.StatusOK, entitlementsResponse(snapshot))
}
