package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/panel_api/internal/config"
	"github.com/GTDGit/panel_api/internal/utils"
)

// ErrInvalidCredentials is returned for a wrong admin password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService is the single shared-password gate of the admin tool.
type AuthService struct {
	secret       string
	password     string
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthService constructs an AuthService from config.
func NewAuthService(cfg *config.AuthConfig) *AuthService {
	return &AuthService{
		secret:       cfg.JWTSecret,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		ttl:          cfg.SessionTTL,
		now:          utcNow,
	}
}

// Session is an issued admin session.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks password and issues a session token. A configured bcrypt
// hash takes precedence over the plain password.
func (s *AuthService) Login(password string) (*Session, error) {
	if !s.checkPassword(password) {
		log.Warn().Msg("Admin login failed")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := utils.GenerateSessionToken(s.secret, s.ttl, now)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Admin login successful")
	return &Session{Token: token, ExpiresAt: now.Add(s.ttl)}, nil
}

func (s *AuthService) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	if s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// ValidateSession verifies a session token.
func (s *AuthService) ValidateSession(token string) error {
	if token == "" {
		return ErrInvalidCredentials
	}
	_, err := utils.ValidateSessionToken(s.secret, token)
	return err
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
