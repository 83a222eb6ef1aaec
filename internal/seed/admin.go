package seed

import (
	"context"
	"errors"
	"fmt"

	"airdemo/internal/store"
)

// Accounts creates login accounts.
type Accounts interface {
	SignUp(ctx context.Context, email, password, name string) (string, error)
}

// CreateAdmin makes sure email exists and holds the admin role. The account is
// only created when missing, in which case password is required. It reports
// whether a new account was made.
func CreateAdmin(ctx context.Context, st *store.Store, accounts Accounts, email, password, name string) (string, bool, error) {
	var (
		userID  string
		created bool
	)
	u, err := st.UserByEmail(ctx, email)
	switch {
	case err == nil:
		userID = u.ID
	case errors.Is(err, store.ErrNotFound):
		if password == "" {
			return "", false, fmt.Errorf("admin %s does not exist and no password was given", email)
		}
		userID, err = accounts.SignUp(ctx, email, password, name)
		if err != nil {
			return "", false, fmt.Errorf("sign up %s: %w", email, err)
		}
		created = true
	default:
		return "", false, err
	}

	err = st.Transaction(ctx, func(tx *store.Store) error {
		role, err := tx.EnsureAdminRole(ctx)
		if err != nil {
			return err
		}
		return tx.GrantRole(ctx, userID, role)
	})
	if err != nil {
		return "", false, fmt.Errorf("grant admin: %w", err)
	}
	return userID, created, nil
}
