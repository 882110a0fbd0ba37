package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

type fakeStore struct {
	records []pgrepo.PhotoRecord
	nextID  int64
}

func (f *fakeStore) CreatePhoto(_ context.Context, listingID, objectKey string) (pgrepo.PhotoRecord, error) {
	if len(f.records) >= pgrepo.MaxListingPhotos() {
		return pgrepo.PhotoRecord{}, pgrepo.ErrPhotoLimitReached
	}

	f.nextID++
	rec := pgrepo.PhotoRecord{
		ID:        f.nextID,
		ListingID: listingID,
		Position:  len(f.records) + 1,
		ObjectKey: objectKey,
		CreatedAt: time.Now().UTC(),
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) ListByListing(_ context.Context, _ string) ([]pgrepo.PhotoRecord, error) {
	out := make([]pgrepo.PhotoRecord, 0, len(f.records))
	out = append(out, f.records...)
	return out, nil
}

type fakeListings struct{}

func (fakeListings) FindByID(_ context.Context, listingID string) (pgrepo.ListingRecord, error) {
	if listingID == "l-missing" {
		return pgrepo.ListingRecord{}, pgrepo.ErrListingNotFound
	}
	return pgrepo.ListingRecord{ID: listingID, OwnerUserID: 1, Status: "approved"}, nil
}

type fakeStorage struct {
	deleteCalls int
}

func (f *fakeStorage) PutPhoto(_ context.Context, _ string, _ io.Reader, _ int64, _ string) error {
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.local/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error {
	f.deleteCalls++
	return nil
}

func TestUploadPhotoLimit(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	svc := NewService(store, fakeListings{}, storage)

	for i := 1; i <= pgrepo.MaxListingPhotos(); i++ {
		photo, err := svc.UploadListingPhoto(context.Background(), 1, "l-1", "photo.jpg", "image/jpeg", strings.NewReader("abc"), 3)
		if err != nil {
			t.Fatalf("upload photo #%d: %v", i, err)
		}
		if photo.Position != i {
			t.Fatalf("unexpected photo position: got %d want %d", photo.Position, i)
		}
	}

	_, err := svc.UploadListingPhoto(context.Background(), 1, "l-1", "extra.jpg", "image/jpeg", strings.NewReader("abc"), 3)
	if !errors.Is(err, ErrPhotoLimitReached) {
		t.Fatalf("expected ErrPhotoLimitReached, got %v", err)
	}
	if storage.deleteCalls != 1 {
		t.Fatalf("expected cleanup delete call after limit reached, got %d", storage.deleteCalls)
	}
}

func TestUploadPhotoOwnerOnly(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeListings{}, &fakeStorage{})

	_, err := svc.UploadListingPhoto(context.Background(), 2, "l-1", "photo.jpg", "image/jpeg", strings.NewReader("abc"), 3)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	_, err = svc.UploadListingPhoto(context.Background(), 1, "l-missing", "photo.jpg", "image/jpeg", strings.NewReader("abc"), 3)
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestListPhotosSigned(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeListings{}, &fakeStorage{})

	if _, err := svc.UploadListingPhoto(context.Background(), 1, "l-1", "photo.jpg", "image/jpeg", strings.NewReader("abc"), 3); err != nil {
		t.Fatalf("upload: %v", err)
	}

	photos, err := svc.ListPhotos(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(photos))
	}
	if !strings.HasPrefix(photos[0].URL, "https://signed.local/listings/l-1/") {
		t.Fatalf("expected signed url under the listing prefix, got %q", photos[0].URL)
	}
}
