package bolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/staff-portal/domain"
	boltRepo "github.com/fastygo/staff-portal/repository/bolt"
)

func openStore(t *testing.T) *boltRepo.SessionStore {
	t.Helper()
	store, err := boltRepo.OpenSessionStore(filepath.Join(t.TempDir(), "sessions.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	session := &domain.Session{
		ID:            "s-1",
		Authenticated: true,
		Role:          domain.RoleCEO,
		EmployeeID:    "C001",
		State:         domain.StateAdmitted,
	}
	require.NoError(t, store.Save(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, got.Valid())
	assert.Equal(t, domain.RoleCEO, got.Role)
	assert.Equal(t, "C001", got.EmployeeID)
}

func TestSessionStore_SaveReplacesWholeRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	session := &domain.Session{ID: "s-2", Role: domain.RoleEmployee, EmployeeID: "EMP001", State: domain.StatePending}
	require.NoError(t, store.Save(ctx, session))

	session.AdmitRestricted(time.UnixMilli(1_700_000_000_000))
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s-2")
	require.NoError(t, err)
	assert.True(t, got.Authenticated)
	assert.True(t, got.ProfileIncomplete)
	assert.Equal(t, int64(1_700_000_000_000), got.ProfileSkipTime)
	assert.Equal(t, domain.StateRestricted, got.State)
}

func TestSessionStore_MissingAndDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s-3", Authenticated: true, Role: domain.RoleHR, EmployeeID: "H1"}))
	require.NoError(t, store.Delete(ctx, "s-3"))
	require.NoError(t, store.Delete(ctx, "s-3"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err = store.Get(ctx, "s-3")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestSessionStore_RejectsEmptyID(t *testing.T) {
	store := openStore(t)
	err := store.Save(context.Background(), &domain.Session{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
