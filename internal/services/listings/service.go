package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("listing not found")
)

type Store interface {
	Create(ctx context.Context, rec pgrepo.ListingRecord) (pgrepo.ListingRecord, error)
	FindByID(ctx context.Context, listingID string) (pgrepo.ListingRecord, error)
	List(ctx context.Context, filter pgrepo.ListingFilter) ([]pgrepo.ListingRecord, error)
	UpdateStatus(ctx context.Context, listingID, status string) (pgrepo.ListingRecord, error)
}

type UnlockChecker interface {
	IsUnlocked(ctx context.Context, userID int64, listingID string) (bool, error)
}

type StaffNotifier interface {
	ListingSubmitted(listingID, title, city string) error
}

// BrowseQuery is the public catalog query. Kind is required; everything else
// narrows the result.
type BrowseQuery struct {
	Kind    string
	City    string
	RentMin int
	RentMax int
	Page    int
	PerPage int
}

type SubmitInput struct {
	Kind         string
	Title        string
	City         string
	Rent         int
	Description  string
	ContactName  string
	ContactPhone string
	ContactEmail string
}

// View is a listing as shown to a viewer. ContactVisible reports whether the
// Contact fields are populated.
type View struct {
	Listing        model.Listing
	ContactVisible bool
	Saved          bool
}

type Dependencies struct {
	Store        Store
	Entitlements UnlockChecker
	Notifier     StaffNotifier
	Cfg          config.ListingConfig
	Log          *zap.Logger
}

type Service struct {
	store        Store
	entitlements UnlockChecker
	notifier     StaffNotifier
	cfg          config.ListingConfig
	log          *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := deps.Cfg
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &Service{
		store:        deps.Store,
		entitlements: deps.Entitlements,
		notifier:     deps.Notifier,
		cfg:          cfg,
		log:          log,
	}
}

// Browse returns approved listings only, newest first.
func (s *Service) Browse(ctx context.Context, query BrowseQuery) ([]model.Listing, error) {
	kind := enums.ListingKind(strings.ToLower(strings.TrimSpace(query.Kind)))
	if !kind.Valid() {
		return nil, ErrValidation
	}
	if query.RentMin < 0 || (query.RentMax > 0 && query.RentMax < query.RentMin) {
		return nil, ErrValidation
	}

	perPage := query.PerPage
	if perPage <= 0 {
		perPage = s.cfg.PageSize
	}
	if perPage > s.cfg.MaxPageSize {
		perPage = s.cfg.MaxPageSize
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	records, err := s.store.List(ctx, pgrepo.ListingFilter{
		Kind:    string(kind),
		City:    strings.TrimSpace(query.City),
		RentMin: query.RentMin,
		RentMax: query.RentMax,
		Status:  string(enums.ModerationStatusApproved),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	out := make([]model.Listing, 0, len(records))
	for _, rec := range records {
		out = append(out, toModel(rec))
	}
	return out, nil
}

// Get returns a listing for a viewer. Contact fields are revealed only to the
// owner or to a viewer who has unlocked the listing. Non-approved listings
// are visible to their owner only.
func (s *Service) Get(ctx context.Context, viewerID int64, listingID string) (View, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return View{}, ErrValidation
	}

	rec, err := s.store.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrListingNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, fmt.Errorf("load listing: %w", err)
	}

	isOwner := viewerID > 0 && rec.OwnerUserID == viewerID
	if rec.Status != string(enums.ModerationStatusApproved) && !isOwner {
		return View{}, ErrNotFound
	}

	view := View{Listing: toModel(rec)}
	if isOwner {
		view.ContactVisible = true
	} else if viewerID > 0 {
		unlocked, err := s.entitlements.IsUnlocked(ctx, viewerID, listingID)
		if err != nil {
			return View{}, fmt.Errorf("check unlock: %w", err)
		}
		view.ContactVisible = unlocked
	}
	if !view.ContactVisible {
		view.Listing.Contact = model.Contact{}
	}

	return view, nil
}

// Submit creates a pending listing and alerts the staff chat. The listing is
// invisible to other users until a moderator approves it.
func (s *Service) Submit(ctx context.Context, ownerID int64, input SubmitInput) (model.Listing, error) {
	if ownerID <= 0 {
		return model.Listing{}, ErrValidation
	}
	kind := enums.ListingKind(strings.ToLower(strings.TrimSpace(input.Kind)))
	if !kind.Valid() {
		return model.Listing{}, ErrValidation
	}

	title := strings.TrimSpace(input.Title)
	city := strings.TrimSpace(input.City)
	phone := strings.TrimSpace(input.ContactPhone)
	if title == "" || city == "" || phone == "" {
		return model.Listing{}, ErrValidation
	}
	if input.Rent < s.cfg.RentMin || (s.cfg.RentMax > 0 && input.Rent > s.cfg.RentMax) {
		return model.Listing{}, ErrValidation
	}

	rec, err := s.store.Create(ctx, pgrepo.ListingRecord{
		OwnerUserID:  ownerID,
		Kind:         string(kind),
		Title:        title,
		City:         city,
		Rent:         input.Rent,
		Description:  strings.TrimSpace(input.Description),
		Status:       string(enums.ModerationStatusPending),
		ContactName:  strings.TrimSpace(input.ContactName),
		ContactPhone: phone,
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
	})
	if err != nil {
		return model.Listing{}, fmt.Errorf("create listing: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.ListingSubmitted(rec.ID, rec.Title, rec.City); err != nil {
			s.log.Warn("staff notification failed", zap.String("listing_id", rec.ID), zap.Error(err))
		}
	}

	s.log.Info("listing submitted",
		zap.Int64("owner_user_id", ownerID),
		zap.String("listing_id", rec.ID),
		zap.String("kind", rec.Kind),
	)

	return toModel(rec), nil
}

func (s *Service) Approve(ctx context.Context, listingID string) (model.Listing, error) {
	return s.moderate(ctx, listingID, enums.ModerationStatusApproved)
}

func (s *Service) Reject(ctx context.Context, listingID string) (model.Listing, error) {
	return s.moderate(ctx, listingID, enums.ModerationStatusRejected)
}

func (s *Service) moderate(ctx context.Context, listingID string, status enums.ModerationStatus) (model.Listing, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return model.Listing{}, ErrValidation
	}

	rec, err := s.store.UpdateStatus(ctx, listingID, string(status))
	if err != nil {
		if errors.Is(err, pgrepo.ErrListingNotFound) {
			return model.Listing{}, ErrNotFound
		}
		return model.Listing{}, fmt.Errorf("update listing status: %w", err)
	}

	s.log.Info("listing moderated",
		zap.String("listing_id", listingID),
		zap.String("status", string(status)),
	)

	return toModel(rec), nil
}

func toModel(rec pgrepo.ListingRecord) model.Listing {
	return model.Listing{
		ID:          rec.ID,
		OwnerUserID: rec.OwnerUserID,
		Kind:        enums.ListingKind(rec.Kind),
		Title:       rec.Title,
		City:        rec.City,
		Rent:        rec.Rent,
		Description: rec.Description,
		Status:      enums.ModerationStatus(rec.Status),
		Contact: model.Contact{
			Name:  rec.ContactName,
			Phone: rec.ContactPhone,
			Email: rec.ContactEmail,
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
