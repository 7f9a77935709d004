// Package db opens the client's local SQLite database and applies its goose
// migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/moodnotes/internal/client/migrations"
	"github.com/dmitrijs2005/moodnotes/internal/client/repositories/pending"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories bundles the repositories backed by the local database.
type Repositories struct {
	Pending pending.Repository
	DB      *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Pending: pending.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
