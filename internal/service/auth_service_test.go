package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storedesk/internal/cache"
	"github.com/storedesk/internal/config"
	"github.com/storedesk/internal/models"
	"github.com/storedesk/internal/repository"
)

func newAuthTestService(t *testing.T) (*AuthService, *models.Admin) {
	t.Helper()
	_ = cache.InitRedis(nil)
	cache.Flush()

	db := openServiceTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordPolicy.MinLength = 8
	svc := NewAuthService(cfg, repository.NewAdminRepository(db))

	hash, err := svc.HashPassword("initial-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	admin := &models.Admin{Username: "root", PasswordHash: hash, IsSuper: true}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return svc, admin
}

func TestAuthLoginIssuesParsableToken(t *testing.T) {
	svc, admin := newAuthTestService(t)

	if _, _, _, err := svc.Login("root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "initial-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown admin, got %v", err)
	}

	logged, token, _, err := svc.Login(" root ", "initial-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	state, err := svc.ResolveAuthState(context.Background(), claims)
	if err != nil {
		t.Fatalf("resolve auth state failed: %v", err)
	}
	if !state.IsSuper {
		t.Fatalf("expected super admin state")
	}
}

func TestAuthChangePasswordRevokesTokens(t *testing.T) {
	svc, admin := newAuthTestService(t)
	_, token, _, err := svc.Login("root", "initial-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "bad-old", "another-pass"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	err = svc.ChangePassword(admin.ID, "initial-pass", "short")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	var localized LocalizedError
	if !errors.As(err, &localized) || localized.Key() != "error.password_min_length" {
		t.Fatalf("expected localized policy error, got %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "initial-pass", "another-pass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.ResolveAuthState(context.Background(), claims); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if _, _, _, err := svc.Login("root", "another-pass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthParseRejectsForeignSignature(t *testing.T) {
	svc, admin := newAuthTestService(t)
	other := NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "other", ExpireHours: 1}}, nil)
	token, _, err := other.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := svc.ParseJWT(token); err == nil {
		t.Fatalf("expected signature failure")
	}
}
