// Package invite issues admin invitations and turns accepted ones into admin
// accounts.
package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airdemo/internal/auth"
	"airdemo/internal/mail"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrNotFound         = errors.New("invalid token")
	ErrNotPending       = errors.New("invite is not pending")
	ErrExpired          = errors.New("invite has expired")
	ErrPasswordRequired = errors.New("password required")
)

// Accounts creates login accounts. It returns the new user's id.
type Accounts interface {
	SignUp(ctx context.Context, email, password, name string) (string, error)
}

type Service struct {
	st       *store.Store
	accounts Accounts
	mailer   mail.Mailer
	lg       *zap.SugaredLogger
	appURL   string
	ttl      time.Duration
	now      func() time.Time
}

type Options struct {
	AppURL string
	TTL    time.Duration
}

func NewService(st *store.Store, accounts Accounts, mailer mail.Mailer, lg *zap.SugaredLogger, opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		st: st, accounts: accounts, mailer: mailer, lg: lg,
		appURL: strings.TrimRight(opts.AppURL, "/"), ttl: ttl, now: time.Now,
	}
}

// Result reports the stored invite and, separately, whether the email went out.
// A failed email does not fail Create; the link can be handed over manually.
type Result struct {
	Invite     *models.AdminInvite
	Token      string
	Link       string
	EmailSent  bool
	EmailError error
}

// Create replaces any earlier invite for email with a fresh one and mails the
// link. origin is used for the link when no application URL is configured.
func (s *Service) Create(ctx context.Context, email, invitedBy, origin string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !auth.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	token := uuid.NewString()
	inv := &models.AdminInvite{
		ID:        "invite-" + token,
		Email:     email,
		Token:     token,
		Status:    models.InviteStatusPending,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if invitedBy != "" {
		inv.InvitedBy = &invitedBy
	}
	if err := s.st.ReplaceInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("store invite: %w", err)
	}

	base := s.appURL
	if base == "" {
		base = strings.TrimRight(origin, "/")
	}
	res := &Result{Invite: inv, Token: token, Link: base + "/invite/" + token}
	res.EmailError = s.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Admin invitation",
		Body:    "You have been invited to become an administrator. Finish signing up here:\n\n" + res.Link + "\n",
	})
	res.EmailSent = res.EmailError == nil
	if res.EmailError != nil {
		s.lg.Warnw("invite email not sent", "email", email, "err", res.EmailError)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, token string) (*models.AdminInvite, error) {
	inv, err := s.st.InviteByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return inv, err
}

// Accept grants the admin role to the invited email, creating the account
// first when none exists. It returns the user id.
func (s *Service) Accept(ctx context.Context, token, name, password string) (string, error) {
	inv, err := s.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if inv.Status != models.InviteStatusPending {
		return "", ErrNotPending
	}
	if inv.Expired(s.now()) {
		return "", ErrExpired
	}

	var userID string
	u, err := s.st.UserByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		userID = u.ID
	case errors.Is(err, store.ErrNotFound):
		password = strings.TrimSpace(password)
		if password == "" {
			return "", ErrPasswordRequired
		}
		if _, err := s.accounts.SignUp(ctx, inv.Email, password, strings.TrimSpace(name)); err != nil {
			return "", fmt.Errorf("sign up: %w", err)
		}
		created, err := s.st.UserByEmail(ctx, inv.Email)
		if err != nil {
			return "", fmt.Errorf("load new user: %w", err)
		}
		userID = created.ID
	default:
		return "", err
	}

	err = s.st.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.MarkInviteAccepted(ctx, inv.ID); err != nil {
			if errors.Is(err, store.ErrStale) {
				return ErrNotPending
			}
			return err
		}
		role, err := tx.EnsureAdminRole(ctx)
		if err != nil {
			return fmt.Errorf("admin role: %w", err)
		}
		return tx.GrantRole(ctx, userID, role)
	})
	if err != nil {
		return "", err
	}
	s.lg.Infow("invite accepted", "email", inv.Email, "user_id", userID)
	return userID, nil
}
