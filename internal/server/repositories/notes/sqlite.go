package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

// SQLiteRepository implements note storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new note and fills in the generated ID.
func (r *SQLiteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (title, content, owner, created_at)
		VALUES (?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		note.Title, note.Content, note.Owner, note.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id error: %w", err)
	}
	note.ID = id
	return note, nil
}

// GetByID returns the note row for the given id.
// If not found, it returns common.ErrorNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `
		SELECT id, title, content, owner, created_at
		FROM notes
		WHERE id = ?
	`
	note := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID, &note.Title, &note.Content, &note.Owner, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

// ListByOwner returns all notes owned by the given username, oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Note, error) {
	query := `
		SELECT id, title, content, owner, created_at
		FROM notes
		WHERE owner = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.Owner, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites title and content of an existing note. Owner and ID are
// immutable. Updating an absent note returns common.ErrorNotFound.
func (r *SQLiteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = ?, content = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, note.Title, note.Content, note.ID)
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

// Delete removes a note by id. Deleting an absent note returns
// common.ErrorNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM notes
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, id)
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

// DeleteByOwner removes every note owned by the given username and returns
// the number of rows deleted.
func (r *SQLiteRepository) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	query := `
		DELETE FROM notes
		WHERE owner = ?
	`
	res, err := r.db.ExecContext(ctx, query, owner)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
