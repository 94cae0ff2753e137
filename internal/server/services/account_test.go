package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

func newAccountService(t *testing.T) (*AccountService, *SignupService, *fakeRepoManager) {
	t.Helper()
	m := newFakeRepoManager()
	db := openTestDB(t)
	accounts := NewAccountService(db, m, fakeHasher{})
	signups := NewSignupService(db, m, fakeHasher{}, testLogger())
	return accounts, signups, m
}

func strptr(s string) *string { return &s }

func TestGet_ReturnsAccountAndHistory(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, m.history.Record(ctx, userID, time.Now().Add(-time.Hour)))
	require.NoError(t, m.history.Record(ctx, userID, time.Now()))

	account, history, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", account.Email)
	assert.Len(t, history, 2)
	assert.True(t, history[0].LoginTime.After(history[1].LoginTime), "newest first")
}

func TestGet_UnknownID_NotFound(t *testing.T) {
	svc, _, _ := newAccountService(t)

	_, _, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_NoFields_InvalidEntry(t *testing.T) {
	svc, signups, _ := newAccountService(t)
	userID := signupAccount(t, signups)

	err := svc.Update(context.Background(), userID, UpdateRequest{})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)
}

func TestUpdate_InvalidField_InvalidEntry(t *testing.T) {
	svc, signups, _ := newAccountService(t)
	userID := signupAccount(t, signups)
	ctx := context.Background()

	err := svc.Update(ctx, userID, UpdateRequest{Username: strptr("x")})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)

	err = svc.Update(ctx, userID, UpdateRequest{Email: strptr("not-an-email")})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)

	err = svc.Update(ctx, userID, UpdateRequest{Password: strptr("weak")})
	require.ErrorIs(t, err, common.ErrorInvalidEntry)
}

func TestUpdate_Username(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, svc.Update(ctx, userID, UpdateRequest{Username: strptr("New_name")}))

	account, err := m.accounts.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "New_name", account.Username)
}

func TestUpdate_EmailIsNormalized(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, svc.Update(ctx, userID, UpdateRequest{Email: strptr("New@Mail.com")}))

	account, err := m.accounts.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "new@mail.com", account.Email)
}

func TestUpdate_PasswordChange_RevokesAllRefreshTokens(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, m.refresh.Create(ctx, userID, "device-1", true, time.Hour))
	require.NoError(t, m.refresh.Create(ctx, userID, "device-2", false, time.Hour))

	require.NoError(t, svc.Update(ctx, userID, UpdateRequest{Password: strptr("N3w!passwd")}))

	assert.Equal(t, 0, m.refresh.liveCount(userID), "all sessions invalidated")

	account, err := m.accounts.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:N3w!passwd", account.PasswordHash)
}

func TestUpdate_UsernameChange_KeepsRefreshTokens(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, m.refresh.Create(ctx, userID, "device-1", true, time.Hour))

	require.NoError(t, svc.Update(ctx, userID, UpdateRequest{Username: strptr("New_name")}))

	assert.Equal(t, 1, m.refresh.liveCount(userID))
}

func TestSoftDelete_MarksDeletedAndRevokesTokens(t *testing.T) {
	svc, signups, m := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, m.refresh.Create(ctx, userID, "device-1", true, time.Hour))

	require.NoError(t, svc.SoftDelete(ctx, userID))

	account, err := m.accounts.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, account.Deleted())
	assert.False(t, account.IsActive)
	assert.Equal(t, 0, m.refresh.liveCount(userID))
}

func TestSoftDelete_AlreadyDeleted_NotFound(t *testing.T) {
	svc, signups, _ := newAccountService(t)
	ctx := context.Background()
	userID := signupAccount(t, signups)

	require.NoError(t, svc.SoftDelete(ctx, userID))
	err := svc.SoftDelete(ctx, userID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
