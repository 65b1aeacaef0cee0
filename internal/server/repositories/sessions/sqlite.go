package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

// SQLiteRepository implements session storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new session row. Anonymous sessions store NULL username.
func (r *SQLiteRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, username, flash, created_at)
		VALUES (?, ?, ?, ?)
	`
	username := sql.NullString{String: session.Username, Valid: session.Username != ""}
	flash := sql.NullString{String: session.Flash, Valid: session.Flash != ""}
	if _, err := r.db.ExecContext(ctx, query, session.ID, username, flash, session.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the session row for the given id.
// If not found, it returns common.ErrorNotFound.
func (r *SQLiteRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, username, flash, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	var username, flash sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&session.ID, &username, &flash, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	session.Username = username.String
	session.Flash = flash.String
	return session, nil
}

// SetFlash stores a one-shot notice on the session, replacing any pending one.
func (r *SQLiteRepository) SetFlash(ctx context.Context, id string, message string) error {
	query := `
		UPDATE sessions
		SET flash = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, message, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ConsumeFlash returns the pending flash message and clears it. A session
// without a pending flash yields an empty string.
func (r *SQLiteRepository) ConsumeFlash(ctx context.Context, id string) (string, error) {
	query := `
		SELECT flash
		FROM sessions
		WHERE id = ?
	`
	var flash sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&flash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	if !flash.Valid || flash.String == "" {
		return "", nil
	}

	reset := `
		UPDATE sessions
		SET flash = NULL
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, reset, id); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return flash.String, nil
}

// Delete removes a session by id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM sessions
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByUsername removes every session authenticated as the given user.
func (r *SQLiteRepository) DeleteByUsername(ctx context.Context, username string) error {
	query := `
		DELETE FROM sessions
		WHERE username = ?
	`
	if _, err := r.db.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
