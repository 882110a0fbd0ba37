package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrPhotoLimitReached = errors.New("photo limit reached")
	ErrNotOwner          = errors.New("not the listing owner")
	ErrListingNotFound   = errors.New("listing not found")
)

const signedURLTTL = 5 * time.Minute

type Store interface {
	CreatePhoto(ctx context.Context, listingID, objectKey string) (pgrepo.PhotoRecord, error)
	ListByListing(ctx context.Context, listingID string) ([]pgrepo.PhotoRecord, error)
}

type ListingStore interface {
	FindByID(ctx context.Context, listingID string) (pgrepo.ListingRecord, error)
}

type ObjectStorage interface {
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store    Store
	listings ListingStore
	storage  ObjectStorage
	now      func() time.Time
}

type Photo struct {
	ID        int64     `json:"id"`
	Position  int       `json:"position"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewService(store Store, listings ListingStore, storage ObjectStorage) *Service {
	return &Service{
		store:    store,
		listings: listings,
		storage:  storage,
		now:      time.Now,
	}
}

// UploadListingPhoto stores a photo for one of the owner's listings. Only the
// listing owner can attach photos.
func (s *Service) UploadListingPhoto(ctx context.Context, ownerID int64, listingID, fileName, contentType string, body io.Reader, size int64) (Photo, error) {
	if ownerID <= 0 || strings.TrimSpace(listingID) == "" || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if s.store == nil || s.storage == nil || s.listings == nil {
		return Photo{}, fmt.Errorf("media dependencies are not configured")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrListingNotFound) {
			return Photo{}, ErrListingNotFound
		}
		return Photo{}, fmt.Errorf("load listing: %w", err)
	}
	if listing.OwnerUserID != ownerID {
		return Photo{}, ErrNotOwner
	}

	objectKey, err := buildPhotoObjectKey(listingID, fileName)
	if err != nil {
		return Photo{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutPhoto(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("put object: %w", err)
	}

	record, err := s.store.CreatePhoto(ctx, listingID, objectKey)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		if errors.Is(err, pgrepo.ErrPhotoLimitReached) {
			return Photo{}, ErrPhotoLimitReached
		}
		return Photo{}, fmt.Errorf("create photo record: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo url: %w", err)
	}

	return Photo{
		ID:        record.ID,
		Position:  record.Position,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *Service) ListPhotos(ctx context.Context, listingID string) ([]Photo, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	records, err := s.store.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}

	photos := make([]Photo, 0, len(records))
	for _, rec := range records {
		url, err := s.storage.PresignGet(ctx, rec.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign photo url: %w", err)
		}
		photos = append(photos, Photo{
			ID:        rec.ID,
			Position:  rec.Position,
			URL:       url,
			CreatedAt: rec.CreatedAt,
		})
	}

	return photos, nil
}

func buildPhotoObjectKey(listingID, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("listings/%s/photos/%s_%s%s", listingID, stamp, hex.EncodeToString(rnd), ext), nil
}
