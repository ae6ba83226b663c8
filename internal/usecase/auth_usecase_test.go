package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository/repotest"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"
)

type authFixture struct {
	usecase AuthUsecase
	users   *repotest.UserStore
	audit   *repotest.AuditStore
	tokens  service.TokenStore
	jwt     *jwt.JWTService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	log := quietLogger()
	users := repotest.NewUserStore()
	audit := repotest.NewAuditStore()
	tokens := service.NewMemoryTokenStore()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(nil, log, users, users, jwtService, tokens, service.NewAuditService(nil, log, audit))
	return &authFixture{usecase: uc, users: users, audit: audit, tokens: tokens, jwt: jwtService}
}

func (f *authFixture) createStaff(t *testing.T) *dto.UserResponse {
	t.Helper()
	user, err := f.usecase.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:    "Staff@Clinic.test",
		Password: "correct-horse",
		FullName: "Front Desk",
		Role:     entity.RoleStaff,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createStaff(t)

	if user.Email != "staff@clinic.test" || user.Role != entity.RoleStaff || !user.IsActive {
		t.Errorf("unexpected user %+v", user)
	}

	_, err := f.usecase.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email: "staff@clinic.test", Password: "another-pass", FullName: "Dup", Role: entity.RoleAdmin,
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}

	_, err = f.usecase.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email: "doc@clinic.test", Password: "another-pass", FullName: "Doc", Role: "doctor",
	})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	created := f.createStaff(t)
	ctx := context.Background()

	if _, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "staff@clinic.test", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "nobody@clinic.test", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "staff@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != created.ID || claims.RoleID != entity.RoleIDStaff {
		t.Errorf("unexpected claims %+v", claims)
	}
	if ok, _ := f.tokens.Exists(ctx, claims.UserID, claims.TokenID, jwt.AccessToken); !ok {
		t.Error("expected access token to be stored")
	}

	actions := f.audit.Actions()
	if actions[len(actions)-1] != entity.AuditActionUserLogin {
		t.Errorf("expected login to be audited, got %v", actions)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	created := f.createStaff(t)

	f.users.SetActive(created.ID, false)

	_, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: "staff@clinic.test", Password: "correct-horse"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture(t)
	f.createStaff(t)
	ctx := context.Background()

	first, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "staff@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: first.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	second, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected replayed refresh token to be revoked, got %v", err)
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	f := newAuthFixture(t)
	f.createStaff(t)
	ctx := context.Background()

	tokens, _ := f.usecase.Login(ctx, &dto.LoginRequest{Email: "staff@clinic.test", Password: "correct-horse"})
	claims, _ := f.jwt.ValidateToken(tokens.AccessToken)

	if err := f.usecase.Logout(ctx, claims, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ok, _ := f.tokens.Exists(ctx, claims.UserID, claims.TokenID, jwt.AccessToken); ok {
		t.Error("expected access token to be revoked")
	}
	if _, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected refresh token to be revoked, got %v", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	created := f.createStaff(t)

	user, err := f.usecase.GetCurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.FullName != "Front Desk" {
		t.Errorf("unexpected user %+v", user)
	}
}
