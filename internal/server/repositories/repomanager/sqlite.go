package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/noteboard/internal/dbx"
	litemigrations "github.com/dmitrijs2005/noteboard/internal/server/migrations/sqlite"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/notes"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/users"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations.
// Useful for single-file development and test deployments.
type SQLiteRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

// Notes returns a notes.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLiteRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(litemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() (RepositoryManager, error) {
	return &SQLiteRepositoryManager{}, nil
}
