package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func TestAuthenticate(t *testing.T) {
	jwtService := newJWT()
	store := service.NewMemoryTokenStore()
	mw := NewAuthMiddleware(jwtService, store)
	userID := uuid.New()
	ctx := context.Background()

	access, accessID, _ := jwtService.GenerateAccessToken(userID, "staff@clinic.test", entity.RoleIDStaff)
	refresh, refreshID, _ := jwtService.GenerateRefreshToken(userID, "staff@clinic.test", entity.RoleIDStaff)
	_ = store.Save(ctx, userID, accessID, jwt.AccessToken, time.Minute)
	_ = store.Save(ctx, userID, refreshID, jwt.RefreshToken, time.Hour)

	var seenUser uuid.UUID
	var seenRole int
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = GetUserIDFromContext(r.Context())
		seenRole, _ = GetRoleIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"valid", "Bearer " + access, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if seenUser != userID || seenRole != entity.RoleIDStaff {
		t.Errorf("claims not propagated: %s %d", seenUser, seenRole)
	}

	_ = store.Revoke(ctx, userID, accessID, jwt.AccessToken)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		roleID  *int
		handler func(http.Handler) http.Handler
		want    int
	}{
		{"admin on admin route", ptr(entity.RoleIDAdmin), RequireAdmin, http.StatusNoContent},
		{"staff on admin route", ptr(entity.RoleIDStaff), RequireAdmin, http.StatusForbidden},
		{"staff on shared route", ptr(entity.RoleIDStaff), RequireAdminOrStaff, http.StatusNoContent},
		{"unknown role", ptr(42), RequireAdminOrStaff, http.StatusForbidden},
		{"no role", nil, RequireAdminOrStaff, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.roleID != nil {
				req = req.WithContext(context.WithValue(req.Context(), RoleIDKey, *tt.roleID))
			}
			rec := httptest.NewRecorder()
			tt.handler(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func ptr(v int) *int { return &v }

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()
	h := rl.Limit(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do("10.0.0.1") != http.StatusNoContent || do("10.0.0.1") != http.StatusNoContent {
		t.Fatal("burst requests must pass")
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := do("10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("other clients have their own budget, got %d", code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Errorf("expected remote host, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("expected first forwarded hop, got %s", got)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	var seen string
	h := RequestID(AccessLog(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected generated request id to be echoed, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Code != http.StatusTeapot {
		t.Fatalf("expected incoming id to be kept, got %q (status %d)", seen, rec.Code)
	}
}
