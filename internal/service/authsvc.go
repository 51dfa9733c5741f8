package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"scholarshipserver/internal/auth"
	"scholarshipserver/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	GetUserByResetTokenHash(ctx context.Context, tokenHash string) (domain.UserWithPassword, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
	SetPassword(ctx context.Context, userID, passwordHash string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

type AuthService struct {
	Users         UsersStore
	Tokens        TokenIssuer
	Mail          Notifier
	ResetTokenTTL time.Duration
	ResetURLBase  string
	Now           func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a user and returns it with a fresh bearer token.
// The caller never chooses a role: self-registration is always USER,
// elevation goes through the admin service.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Users.CreateUser(ctx, name, email, passwordHash, domain.RoleUser)
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Login verifies credentials. Unknown email and wrong password fail the
// same way so the endpoint cannot be used to probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(email)

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u.User, token, nil
}

// CurrentUser resolves a verified token subject to a live user record.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}

// RequestPasswordReset stores a hashed one-shot token on the user and
// mails the raw token. A failed send rolls the token back so the user
// record is left exactly as it was.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, tokenHash, err := newResetToken()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.ResetTokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, tokenHash, expiresAt); err != nil {
		return err
	}

	resetURL := s.resetLink(raw)
	if err := s.Mail.SendPasswordReset(ctx, u.Email, resetURL); err != nil {
		if clearErr := s.Users.ClearResetToken(ctx, u.ID); clearErr != nil {
			return fmt.Errorf("clear reset token after send failure: %w", clearErr)
		}
		return fmt.Errorf("%w: %w", domain.ErrEmailSend, err)
	}
	return nil
}

// ResetPassword consumes a raw reset token. The stored hash is cleared
// in the same write that replaces the password, so the token is single
// use.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	tokenHash := hashResetToken(rawToken)

	u, err := s.Users.GetUserByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}
	if u.ResetTokenExpiresAt == nil || !u.ResetTokenExpiresAt.After(s.now()) {
		return "", domain.ErrResetTokenExpired
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.SetPassword(ctx, u.ID, passwordHash); err != nil {
		return "", err
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *AuthService) resetLink(rawToken string) string {
	base := strings.TrimRight(s.ResetURLBase, "/")
	return base + "/reset-password?token=" + url.QueryEscape(rawToken)
}

func newResetToken() (string, string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read reset token: %w", err)
	}
	raw := hex.EncodeToString(buf)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
