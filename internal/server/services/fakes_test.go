package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/loginhistory"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/refreshtokens"
)

// fakeAccountsRepo is an in-memory accounts.Repository. Like the real store,
// the email uniqueness check at insert time covers soft-deleted rows too.
type fakeAccountsRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Account
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{rows: make(map[string]*models.Account)}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Roles = append([]string(nil), a.Roles...)
	if a.DeletedAt != nil {
		at := *a.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func (r *fakeAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(account.Email)
	for _, row := range r.rows {
		if strings.ToLower(row.Email) == email {
			return nil, common.ErrorConflict
		}
	}

	created := copyAccount(account)
	created.ID = uuid.New().String()
	created.Email = email
	created.IsActive = true
	created.Roles = []string{common.DefaultRole}
	created.CreatedAt = time.Now()
	r.rows[created.ID] = created

	return copyAccount(created), nil
}

func (r *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if strings.ToLower(row.Email) == strings.ToLower(email) {
			return copyAccount(row), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyAccount(row), nil
}

func (r *fakeAccountsRepo) Update(ctx context.Context, id string, upd accounts.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.Username != nil {
		row.Username = *upd.Username
	}
	if upd.Email != nil {
		row.Email = strings.ToLower(*upd.Email)
	}
	if upd.PasswordHash != nil {
		row.PasswordHash = *upd.PasswordHash
	}
	return nil
}

func (r *fakeAccountsRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return common.ErrorNotFound
	}
	now := time.Now()
	row.DeletedAt = &now
	row.IsActive = false
	return nil
}

func (r *fakeAccountsRepo) Restore(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	row.DeletedAt = nil
	row.IsActive = true
	return nil
}

// fakeRefreshTokensRepo is an in-memory refreshtokens.Repository.
type fakeRefreshTokensRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RefreshToken
}

func newFakeRefreshTokensRepo() *fakeRefreshTokensRepo {
	return &fakeRefreshTokensRepo{rows: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokensRepo) Create(ctx context.Context, accountID string, token string, persist bool, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.rows[token] = &models.RefreshToken{
		Token:     token,
		AccountID: accountID,
		Persist:   persist,
		Expires:   now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *fakeRefreshTokensRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *row
	return &c, nil
}

func (r *fakeRefreshTokensRepo) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.rows[token]; ok && row.RevokedAt == nil {
		now := time.Now()
		row.RevokedAt = &now
	}
	return nil
}

func (r *fakeRefreshTokensRepo) RevokeAllForAccount(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, row := range r.rows {
		if row.AccountID == accountID && row.RevokedAt == nil {
			row.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokensRepo) liveCount(accountID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, row := range r.rows {
		if row.AccountID == accountID && row.RevokedAt == nil {
			n++
		}
	}
	return n
}

// fakeLoginHistoryRepo is an in-memory loginhistory.Repository.
type fakeLoginHistoryRepo struct {
	mu   sync.Mutex
	rows []*models.LoginRecord
}

func newFakeLoginHistoryRepo() *fakeLoginHistoryRepo {
	return &fakeLoginHistoryRepo{}
}

func (r *fakeLoginHistoryRepo) Record(ctx context.Context, accountID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, &models.LoginRecord{
		ID:        int64(len(r.rows) + 1),
		AccountID: accountID,
		LoginTime: at,
	})
	return nil
}

func (r *fakeLoginHistoryRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.LoginRecord
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].AccountID == accountID {
			c := *r.rows[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// fakeRepoManager hands out the same in-memory repositories regardless of the
// transaction handle.
type fakeRepoManager struct {
	accounts *fakeAccountsRepo
	refresh  *fakeRefreshTokensRepo
	history  *fakeLoginHistoryRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts: newFakeAccountsRepo(),
		refresh:  newFakeRefreshTokensRepo(),
		history:  newFakeLoginHistoryRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository { return m.accounts }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.refresh }

func (m *fakeRepoManager) LoginHistory(db dbx.DBTX) loginhistory.Repository { return m.history }

// fakeHasher is a deterministic password.Hasher for tests.
type fakeHasher struct{}

func (fakeHasher) Hash(pwd string) (string, error) { return "hashed:" + pwd, nil }

func (fakeHasher) Verify(pwd, hash string) (bool, error) { return hash == "hashed:"+pwd, nil }

// openTestDB provides the *sql.DB the services run their transactions on.
// The fakes ignore the handle; sqlite just backs Begin/Commit.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                      "test-secret",
		AccessTokenValidityDuration:    15 * time.Minute,
		RefreshTokenValidityDuration:   720 * time.Hour,
		SessionRefreshValidityDuration: 12 * time.Hour,
		ResetTokenValidityDuration:     30 * time.Minute,
		ResetBaseURL:                   "https://accounts.example.com/reset",
	}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
