package service

import (
	"context"
	"testing"
	"time"

	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	alice, bob := uuid.New(), uuid.New()

	if err := store.Save(ctx, alice, "a1", jwt.AccessToken, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, alice, "r1", jwt.RefreshToken, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, bob, "b1", jwt.AccessToken, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	if ok, _ := store.Exists(ctx, alice, "a1", jwt.AccessToken); !ok {
		t.Fatal("expected access token to exist")
	}
	// Same ID under the other token type is a different key.
	if ok, _ := store.Exists(ctx, alice, "a1", jwt.RefreshToken); ok {
		t.Fatal("access token must not validate as refresh token")
	}

	if err := store.Revoke(ctx, alice, "a1", jwt.AccessToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := store.Exists(ctx, alice, "a1", jwt.AccessToken); ok {
		t.Fatal("expected revoked token to be gone")
	}

	if err := store.RevokeAll(ctx, alice); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if ok, _ := store.Exists(ctx, alice, "r1", jwt.RefreshToken); ok {
		t.Fatal("expected refresh token to be revoked")
	}
	if ok, _ := store.Exists(ctx, bob, "b1", jwt.AccessToken); !ok {
		t.Fatal("other users' tokens must survive")
	}
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	store := &memoryTokenStore{tokens: make(map[string]time.Time), now: func() time.Time { return now }}
	user := uuid.New()

	_ = store.Save(ctx, user, "t", jwt.AccessToken, time.Minute)
	now = now.Add(2 * time.Minute)

	if ok, _ := store.Exists(ctx, user, "t", jwt.AccessToken); ok {
		t.Fatal("expected expired token to be rejected")
	}
}
