package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
	mediasvc "github.com/viraj01032007/setmystay/backend/internal/services/media"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

const maxPhotoUploadSize = 20 << 20 // 20 MiB

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) PhotoUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadSize)
	if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	photo, err := h.service.UploadListingPhoto(r.Context(), identity.UserID, chi.URLParam(r, "listingID"), header.Filename, contentType, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PhotoResponse{
		ID:        photo.ID,
		Position:  photo.Position,
		URL:       photo.URL,
		CreatedAt: photo.CreatedAt,
	})
}

func (h *MediaHandler) PhotosList(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	photos, err := h.service.ListPhotos(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		handleMediaError(w, err)
		return
	}

	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		out = append(out, dto.PhotoResponse{
			ID:        photo.ID,
			Position:  photo.Position,
			URL:       photo.URL,
			CreatedAt: photo.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.PhotosResponse{Photos: out})
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid media payload")
	case errors.Is(err, mediasvc.ErrListingNotFound):
		writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
	case errors.Is(err, mediasvc.ErrNotOwner):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: "FORBIDDEN", Message: "only the listing owner can manage photos"})
	case errors.Is(err, mediasvc.ErrPhotoLimitReached):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "PHOTO_LIMIT_REACHED", Message: "photo limit reached for this listing"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "media operation failed")
	}
}
