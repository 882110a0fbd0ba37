package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/viraj01032007/setmystay/backend/internal/repo/redis"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	"github.com/viraj01032007/setmystay/backend/internal/domain/model"
	pgrepo "github.com/viraj01032007/setmystay/backend/internal/repo/postgres"
	"github.com/viraj01032007/setmystay/backend/internal/services/auth"
)

type stubUserStore struct {
	byEmail map[string]model.User
	nextID  int64
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byEmail: make(map[string]model.User), nextID: 1}
}

func (s *stubUserStore) Create(ctx context.Context, email, displayName, passwordHash string, role enums.Role) (model.User, error) {
	if _, ok := s.byEmail[email]; ok {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	user := model.User{
		ID:           s.nextID,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         role,
	}
	s.nextID++
	s.byEmail[email] = user
	return user, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByID(ctx context.Context, userID int64) (model.User, error) {
	for _, user := range s.byEmail {
		if user.ID == userID {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

type resetRecorder struct {
	entitlementResets []int64
	purchaseResets    []int64
	savedResets       []int64
}

func (r *resetRecorder) Reset(ctx context.Context, userID int64) error {
	r.entitlementResets = append(r.entitlementResets, userID)
	return nil
}

type purchaseResetRecorder struct{ rec *resetRecorder }

func (p purchaseResetRecorder) DeleteAllForUser(ctx context.Context, userID int64) error {
	p.rec.purchaseResets = append(p.rec.purchaseResets, userID)
	return nil
}

type savedResetRecorder struct{ rec *resetRecorder }

func (s savedResetRecorder) DeleteAllForUser(ctx context.Context, userID int64) error {
	s.rec.savedResets = append(s.rec.savedResets, userID)
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *stubUserStore, *resetRecorder) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := newStubUserStore()
	svc := auth.NewService(auth.NewJWTManager("test-secret", 15*time.Minute), redrepo.NewSessionRepo(client), users, auth.MinRefreshTTL)

	rec := &resetRecorder{}
	svc.AttachSessionData(rec, purchaseResetRecorder{rec}, savedResetRecorder{rec})

	return svc, users, rec
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ada@Example.com", "Ada", "strongpassword")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.AccessToken == "" || registered.RefreshToken == "" {
		t.Fatal("expected tokens after register")
	}
	if registered.Me.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", registered.Me.Email)
	}

	logged, err := svc.Login(ctx, "ada@example.com", "strongpassword")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.Me.ID != registered.Me.ID {
		t.Fatalf("expected same user id, got %d vs %d", logged.Me.ID, registered.Me.ID)
	}

	claims, err := svc.ValidateAccessToken(ctx, logged.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != logged.Me.ID {
		t.Fatalf("expected claims for user %d, got %d", logged.Me.ID, claims.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ada@example.com", "Ada", "strongpassword"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "ada@example.com", "Other", "strongpassword"); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ada@example.com", "Ada", "strongpassword"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "wrongpassword"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "strongpassword"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "ada@example.com", "Ada", "strongpassword")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == result.RefreshToken {
		t.Fatal("expected refresh token rotation")
	}
	if refreshed.Me.Email != "ada@example.com" {
		t.Fatalf("expected profile on refresh, got %+v", refreshed.Me)
	}

	// The old token must be dead after rotation.
	if _, err := svc.Refresh(ctx, result.RefreshToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rotated-out token, got %v", err)
	}
}

func TestLogoutResetsSessionData(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "ada@example.com", "Ada", "strongpassword")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, result.AccessToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}

	userID := result.Me.ID
	if len(rec.entitlementResets) != 1 || rec.entitlementResets[0] != userID {
		t.Fatalf("expected entitlement reset for user %d, got %v", userID, rec.entitlementResets)
	}
	if len(rec.purchaseResets) != 1 || rec.purchaseResets[0] != userID {
		t.Fatalf("expected purchase reset for user %d, got %v", userID, rec.purchaseResets)
	}
	if len(rec.savedResets) != 1 || rec.savedResets[0] != userID {
		t.Fatalf("expected saved reset for user %d, got %v", userID, rec.savedResets)
	}
}

func TestLogoutAll(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "ada@example.com", "Ada", "strongpassword")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := svc.Login(ctx, "ada@example.com", "strongpassword")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, auth.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized after logout all, got %v", err)
		}
	}
	if len(rec.entitlementResets) != 1 {
		t.Fatalf("expected one entitlement reset, got %v", rec.entitlementResets)
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.ValidateAccessToken(context.Background(), "not-a-token"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
