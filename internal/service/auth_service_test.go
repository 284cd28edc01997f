package service

import (
	"errors"
	"testing"
	"time"

	"github.com/GTDGit/panel_api/internal/config"
)

func TestAuthService_PlainPassword(t *testing.T) {
	svc := NewAuthService(&config.AuthConfig{JWTSecret: "secret", Password: "letmein", SessionTTL: time.Hour})

	if _, err := svc.Login("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for empty password, got %v", err)
	}

	sess, err := svc.Login("letmein")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.ValidateSession(sess.Token); err != nil {
		t.Errorf("expected token to validate, got %v", err)
	}
	if err := svc.ValidateSession(sess.Token + "x"); err == nil {
		t.Errorf("expected tampered token to fail")
	}

	other := NewAuthService(&config.AuthConfig{JWTSecret: "other", Password: "letmein", SessionTTL: time.Hour})
	if err := other.ValidateSession(sess.Token); err == nil {
		t.Errorf("expected token signed with another secret to fail")
	}
}

func TestAuthService_HashTakesPrecedence(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	svc := NewAuthService(&config.AuthConfig{JWTSecret: "secret", Password: "plain", PasswordHash: hash, SessionTTL: time.Hour})

	if _, err := svc.Login("plain"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected plain password to be ignored when a hash is set, got %v", err)
	}
	if _, err := svc.Login("s3cret"); err != nil {
		t.Errorf("expected hashed password to log in, got %v", err)
	}
}

func TestAuthService_ExpiredSession(t *testing.T) {
	svc := NewAuthService(&config.AuthConfig{JWTSecret: "secret", Password: "pw", SessionTTL: time.Minute})
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	sess, err := svc.Login("pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.ValidateSession(sess.Token); err == nil {
		t.Errorf("expected expired token to fail")
	}
}

func TestAuthService_NoPasswordConfigured(t *testing.T) {
	svc := NewAuthService(&config.AuthConfig{JWTSecret: "secret", SessionTTL: time.Hour})
	if _, err := svc.Login("anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected login to fail without a configured password, got %v", err)
	}
	if _, err := HashPassword(""); err == nil {
		t.Errorf("expected empty password to be rejected")
	}
}
