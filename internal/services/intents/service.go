package intents

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrValidation = errors.New("validation failed")

// Actions a signed-out user can be interrupted in. Only listing submission
// resumes with a redirect after login; the rest just remember what prompted
// the sign-in.
const (
	ActionListProperty  = "list_property"
	ActionUnlockContact = "unlock_contact"
	ActionSaveListing   = "save_listing"
	ActionPurchasePlan  = "purchase_plan"
)

const listPropertyResumePath = "/listings/new"

type KVStore interface {
	Get(ctx context.Context, key string, target any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type record struct {
	Action    string `json:"action"`
	ListingID string `json:"listing_id,omitempty"`
}

// Resume tells the client what to do right after a successful login.
type Resume struct {
	Action    string `json:"action"`
	ListingID string `json:"listing_id,omitempty"`
	ResumeTo  string `json:"resume_to,omitempty"`
}

type Service struct {
	kv  KVStore
	ttl time.Duration
	log *zap.Logger
}

func NewService(kv KVStore, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{kv: kv, ttl: ttl, log: log}
}

// Remember stores the action a signed-out device was attempting. A later
// intent for the same device overwrites the earlier one.
func (s *Service) Remember(ctx context.Context, deviceID, action, listingID string) error {
	deviceID = strings.TrimSpace(deviceID)
	action = strings.TrimSpace(action)
	if deviceID == "" || !validAction(action) {
		return ErrValidation
	}

	s.kv.Set(ctx, key(deviceID), record{Action: action, ListingID: strings.TrimSpace(listingID)}, s.ttl)
	s.log.Debug("intent remembered", zap.String("device_id", deviceID), zap.String("action", action))
	return nil
}

// Consume pops the device's pending intent. The second call for the same
// device finds nothing. ok is false when no intent was pending or it expired.
func (s *Service) Consume(ctx context.Context, deviceID string) (Resume, bool) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Resume{}, false
	}

	var rec record
	if !s.kv.Get(ctx, key(deviceID), &rec) {
		return Resume{}, false
	}
	s.kv.Delete(ctx, key(deviceID))

	if !validAction(rec.Action) {
		return Resume{}, false
	}

	resume := Resume{Action: rec.Action, ListingID: rec.ListingID}
	if rec.Action == ActionListProperty {
		resume.ResumeTo = listPropertyResumePath
	}
	return resume, true
}

func validAction(action string) bool {
	switch action {
	case ActionListProperty, ActionUnlockContact, ActionSaveListing, ActionPurchasePlan:
		return true
	default:
		return false
	}
}

func key(deviceID string) string {
	return "intents:" + deviceID
}
