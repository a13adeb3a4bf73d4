package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	pkg_hash "github.com/Skotchmaster/medical_shop/pkg/hash"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo      *repo.GormRepo
	Issuer    *tokens.Issuer
	Denylist  middleware.Denylist
	Publisher events.Publisher
	ResetTTL  time.Duration
	Now       func() time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Issuer.Issue(tokens.Subject{ID: user.ID.String(), Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	publish(ctx, s.Publisher, events.TopicUser, user.ID.String(), transport.EventUserRegistered,
		transport.UserEvent{UserID: user.ID, Email: user.Email})
	return user, nil
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return 10 * time.Minute
}

// RequestPasswordReset gives the same answer for known and unknown emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	exp := s.now().Add(s.resetTTL()).UTC()
	if err := s.Repo.SetResetToken(ctx, user.ID, hashResetToken(token), exp); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	publish(ctx, s.Publisher, events.TopicUser, user.ID.String(), transport.EventPasswordResetRequested,
		transport.PasswordResetRequestedEvent{UserID: user.ID, Email: user.Email, Token: token, ExpiresAt: exp})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	user, err := s.Repo.GetUserByResetToken(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.ResetTokenExpiresAt == nil || !s.now().Before(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	pwHash, err := pkg_hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.ResetPassword(ctx, user.ID, pwHash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	publish(ctx, s.Publisher, events.TopicUser, user.ID.String(), transport.EventPasswordReset,
		transport.UserEvent{UserID: user.ID, Email: user.Email})
	return nil
}

// Logout revokes the token id until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	if s.Denylist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.Denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
