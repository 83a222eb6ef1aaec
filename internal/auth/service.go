package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"airdemo/internal/models"
	"airdemo/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session expired or revoked")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Service owns accounts and sessions. Sessions are rows keyed by the token's
// jti so that logout can revoke a token before it expires.
type Service struct {
	st     *store.Store
	tokens *Tokens
}

func NewService(st *store.Store, tokens *Tokens) *Service {
	return &Service{st: st, tokens: tokens}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// ValidEmail reports whether email is a bare address such as a@b.co.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// SignUp creates an account and returns its id. name defaults to the local
// part of the email.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u := models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash, IsActive: true}
	if err := s.st.CreateUser(ctx, &u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.st.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive || u.PasswordHash == "" || CheckPassword(u.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	tok, jti, exp, err := s.tokens.Sign(u.ID, u.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.st.CreateSession(ctx, &models.Session{JTI: jti, UserID: u.ID, ExpiresAt: exp}); err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *Service) Logout(ctx context.Context, c Claims) error {
	if c.JWTID == "" {
		return nil
	}
	return s.st.RevokeSession(ctx, c.JWTID)
}

// Authenticate verifies the token and that its session is still live.
func (s *Service) Authenticate(ctx context.Context, raw string) (Claims, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return Claims{}, err
	}
	if claims.JWTID == "" {
		return Claims{}, ErrSessionInvalid
	}
	sess, err := s.st.SessionByJTI(ctx, claims.JWTID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Claims{}, ErrSessionInvalid
		}
		return Claims{}, err
	}
	if sess.RevokedAt != nil || s.tokens.now().After(sess.ExpiresAt) {
		return Claims{}, ErrSessionInvalid
	}
	return claims, nil
}

func (s *Service) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	return s.st.HasPermission(ctx, userID, code)
}
