package jwt

import (
	"testing"
	"time"

	"clinic-booking/config"

	"github.com/google/uuid"
)

func newService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService()
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "staff@clinic.test", 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.RoleID != 2 || claims.TokenID != tokenID {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("expected access token, got %s", claims.TokenType)
	}
}

func TestValidateRejects(t *testing.T) {
	svc := newService()
	token, _, _ := svc.GenerateRefreshToken(uuid.New(), "a@clinic.test", 1)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessExpiry: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected signature mismatch to fail")
	}

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("expected garbage to fail")
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected expired token to fail")
	}
}
