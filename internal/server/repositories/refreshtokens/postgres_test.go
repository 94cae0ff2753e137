package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ = `(?s)INSERT\s+INTO\s+refresh_tokens\s*\(token,\s*account_id,\s*persist,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)`
	findQ   = `(?s)SELECT\s+token,\s*account_id,\s*persist,\s*expires_at,\s*revoked_at,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("tok-1", "u-1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "u-1", "tok-1", true, time.Hour); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("tok-1", "u-1", false, sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), "u-1", "tok-1", false, time.Hour)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"token", "account_id", "persist", "expires_at", "revoked_at", "created_at"}).
		AddRow("tok-1", "u-1", true, expires, nil, time.Now())
	mock.ExpectQuery(findQ).
		WithArgs("tok-1").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Token != "tok-1" || got.AccountID != "u-1" || !got.Persist {
		t.Fatalf("unexpected token: %+v", got)
	}
	if got.RevokedAt != nil {
		t.Fatalf("expected nil RevokedAt, got %v", got.RevokedAt)
	}
	if !got.Usable(time.Now()) {
		t.Fatal("expected token to be usable")
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).
		WithArgs("tok-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), "tok-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRevoke_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*now\(\)\s+WHERE\s+token\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
}

func TestRevoke_UnknownTokenIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*now\(\)\s+WHERE\s+token\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Revoke(context.Background(), "ghost"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
}

func TestRevokeAllForAccount_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*now\(\)\s+WHERE\s+account_id\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.RevokeAllForAccount(context.Background(), "u-1"); err != nil {
		t.Fatalf("RevokeAllForAccount error: %v", err)
	}
}

func TestRevokeAllForAccount_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*now\(\)\s+WHERE\s+account_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	err := repo.RevokeAllForAccount(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
