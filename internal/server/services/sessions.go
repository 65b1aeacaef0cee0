package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/repomanager"
)

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager) *SessionService {
	return &SessionService{db: db, repomanager: m}
}

func newSession(username, flash string) *models.Session {
	return &models.Session{
		ID:        uuid.NewString(),
		Username:  username,
		Flash:     flash,
		CreatedAt: time.Now(),
	}
}

// Start creates a new anonymous session.
func (s *SessionService) Start(ctx context.Context) (*models.Session, error) {
	session := newSession("", "")
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return session, nil
}

// Get returns the session with the given id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.repomanager.Sessions(s.db).Find(ctx, id)
}

// LogIn replaces the caller's session with a fresh one authenticated as
// username. The old session is deleted in the same transaction, so the
// session ID rotates on every successful login.
func (s *SessionService) LogIn(ctx context.Context, oldID string, username string, flash string) (*models.Session, error) {

	session := newSession(username, flash)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if oldID != "" {
			if err := repo.Delete(ctx, oldID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("error rotating session: %w", err)
	}

	return session, nil
}

// LogOut deletes the caller's session and starts a fresh anonymous one that
// carries the given flash message.
func (s *SessionService) LogOut(ctx context.Context, oldID string, flash string) (*models.Session, error) {

	session := newSession("", flash)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if err := repo.Delete(ctx, oldID); err != nil {
			return err
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("error rotating session: %w", err)
	}

	return session, nil
}

// SetFlash stores a one-shot notice on the session.
func (s *SessionService) SetFlash(ctx context.Context, id string, message string) error {
	return s.repomanager.Sessions(s.db).SetFlash(ctx, id, message)
}

// ConsumeFlash returns the pending notice, if any, and clears it.
func (s *SessionService) ConsumeFlash(ctx context.Context, id string) (string, error) {
	return s.repomanager.Sessions(s.db).ConsumeFlash(ctx, id)
}
