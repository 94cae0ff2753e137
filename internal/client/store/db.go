package store

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/dmitrijs2005/accountkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/pressly/goose/v3"
)

// RunMigrations sets up goose with the embedded migrations and applies them
// to the local database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if necessary) the local session database under
// a data subdirectory of the working directory and applies migrations.
func InitDatabase(ctx context.Context, fileName string) (*sql.DB, error) {
	dir, err := filex.EnsureSubdDir("data")
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, fileName))
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
