package store_test

import (
	"context"
	"testing"
	"time"

	"airdemo/internal/models"
	"airdemo/internal/store"
	"airdemo/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminRoleIsIdempotent(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()

	r1, err := st.EnsureAdminRole(ctx)
	require.NoError(t, err)
	r2, err := st.EnsureAdminRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.AdminRoleID, r1.ID)
	assert.Equal(t, r1.ID, r2.ID)

	var roles, perms, links int64
	st.DB().Model(&models.Role{}).Count(&roles)
	st.DB().Model(&models.Permission{}).Count(&perms)
	st.DB().Table("role_permissions").Count(&links)
	assert.Equal(t, int64(1), roles)
	assert.Equal(t, int64(1), perms)
	assert.Equal(t, int64(1), links)
}

func TestGrantRoleAndPermission(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()

	u := models.User{Name: "Bea", Email: " Bea@Example.com "}
	require.NoError(t, st.CreateUser(ctx, &u))
	assert.Equal(t, "bea@example.com", u.Email)

	ok, err := st.HasPermission(ctx, u.ID, models.PermissionAdminAccess)
	require.NoError(t, err)
	assert.False(t, ok)

	role, err := st.EnsureAdminRole(ctx)
	require.NoError(t, err)
	require.NoError(t, st.GrantRole(ctx, u.ID, role))
	require.NoError(t, st.GrantRole(ctx, u.ID, role))

	ok, err = st.HasPermission(ctx, u.ID, models.PermissionAdminAccess)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := st.UserByEmail(ctx, "BEA@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, got.RoleNames())

	admins, err := st.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, u.ID, admins[0].ID)

	assert.ErrorIs(t, st.GrantRole(ctx, "ghost", role), store.ErrNotFound)
}

func TestDuplicateUserEmail(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	require.NoError(t, st.CreateUser(ctx, &models.User{Email: "a@example.com"}))
	err := st.CreateUser(ctx, &models.User{Email: "A@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSessions(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	sess := models.Session{JTI: "j1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.CreateSession(ctx, &sess))

	got, err := st.SessionByJTI(ctx, "j1")
	require.NoError(t, err)
	assert.Nil(t, got.RevokedAt)

	require.NoError(t, st.RevokeSession(ctx, "j1"))
	got, err = st.SessionByJTI(ctx, "j1")
	require.NoError(t, err)
	assert.NotNil(t, got.RevokedAt)

	_, err = st.SessionByJTI(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransactionRollsBack(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	err := st.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateUser(ctx, &models.User{Email: "tx@example.com"}); err != nil {
			return err
		}
		return store.ErrStale
	})
	assert.ErrorIs(t, err, store.ErrStale)
	_, err = st.UserByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
