package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/notes"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Notes(db dbx.DBTX) notes.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}

// New returns the RepositoryManager matching a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case "pgx", "postgres":
		return NewPostgresRepositoryManager()
	case "sqlite3":
		return NewSQLiteRepositoryManager()
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}
