package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	intentsvc "github.com/viraj01032007/setmystay/backend/internal/services/intents"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type IntentsHandler struct {
	intents *intentsvc.Service
}

func NewIntentsHandler(intents *intentsvc.Service) *IntentsHandler {
	return &IntentsHandler{intents: intents}
}

// Remember records what a signed-out device was trying to do, keyed by
// X-Device-Id. The login response later carries it back as a resume hint.
func (h *IntentsHandler) Remember(w http.ResponseWriter, r *http.Request) {
	if h.intents == nil {
		writeInternal(w, "INTENTS_SERVICE_UNAVAILABLE", "intents service is unavailable")
		return
	}

	deviceID, ok := authsvc.DeviceIDFromContext(r.Context())
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "X-Device-Id header is required")
		return
	}

	var req dto.IntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.intents.Remember(r.Context(), deviceID, req.Action, req.ListingID); err != nil {
		if errors.Is(err, intentsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "unknown intent action")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to remember intent")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IntentResponse{OK: true})
}
