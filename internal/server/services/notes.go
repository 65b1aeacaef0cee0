package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/repomanager"
)

type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

// Create inserts a note owned by owner in one transaction.
func (s *NoteService) Create(ctx context.Context, owner, title, content string) (*models.Note, error) {

	note := &models.Note{
		Title:     title,
		Content:   content,
		Owner:     owner,
		CreatedAt: time.Now(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Notes(tx).Create(ctx, note)
		if err != nil {
			return err
		}
		note = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	return note, nil
}

// Get returns the note with the given id.
func (s *NoteService) Get(ctx context.Context, id int64) (*models.Note, error) {
	return s.repomanager.Notes(s.db).GetByID(ctx, id)
}

// ListByOwner returns every note owned by the given username.
func (s *NoteService) ListByOwner(ctx context.Context, owner string) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).ListByOwner(ctx, owner)
}

// Update rewrites title and content of the note with the given id. The
// update happens inside a transaction that re-reads the note and verifies
// ownership, so a stale or forged request cannot touch another user's note.
func (s *NoteService) Update(ctx context.Context, id int64, owner, title, content string) error {

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)

		note, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if note.Owner != owner {
			return common.ErrorUnauthorized
		}

		note.Title = title
		note.Content = content
		return repo.Update(ctx, note)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		return fmt.Errorf("error updating note: %w", err)
	}

	return nil
}

// Delete removes the note with the given id after verifying ownership
// inside the transaction.
func (s *NoteService) Delete(ctx context.Context, id int64, owner string) error {

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Notes(tx)

		note, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if note.Owner != owner {
			return common.ErrorUnauthorized
		}

		return repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		return fmt.Errorf("error deleting note: %w", err)
	}

	return nil
}
