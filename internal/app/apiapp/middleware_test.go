package apiapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viraj01032007/setmystay/backend/internal/domain/enums"
	authsvc "github.com/viraj01032007/setmystay/backend/internal/services/auth"
)

func TestRequireRoleAllowsCaseInsensitiveMatch(t *testing.T) {
	mw := RequireRole(enums.RoleStaff, enums.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/moderation/listings/l-1/approve", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   "staff",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsForbiddenRole(t *testing.T) {
	mw := RequireRole(enums.RoleStaff, enums.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/moderation/listings/l-1/approve", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 2,
		SID:    "sid-2",
		Role:   "USER",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireGateNamesTheBlockedAction(t *testing.T) {
	mw := RequireGate("unlock_contact", "please sign in to unlock contact details")

	req := httptest.NewRequest(http.MethodPost, "/listings/l-1/unlock", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without an identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Action  string `json:"action"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "SIGN_IN_REQUIRED" || body.Action != "unlock_contact" {
		t.Fatalf("unexpected gate payload: %+v", body)
	}
}

func TestRequireGatePassesAuthenticated(t *testing.T) {
	mw := RequireGate("save_listing", "please sign in to save listings")

	req := httptest.NewRequest(http.MethodPost, "/listings/l-1/save", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   "USER",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestDeviceIDMiddleware(t *testing.T) {
	var got string
	handler := deviceIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = authsvc.DeviceIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/intents", nil)
	req.Header.Set("X-Device-Id", "device-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "device-42" {
		t.Fatalf("expected device id on context, got %q", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if token, ok := extractBearerToken("Bearer abc123"); !ok || token != "abc123" {
		t.Fatalf("expected abc123, got %q ok=%v", token, ok)
	}
	if _, ok := extractBearerToken("Basic abc123"); ok {
		t.Fatal("expected non-bearer scheme rejected")
	}
	if _, ok := extractBearerToken(""); ok {
		t.Fatal("expected empty header rejected")
	}
}
