// Package services implements the application operations on top of the
// repository layer. Services own transaction boundaries: every mutating
// operation runs inside a single dbx.WithTx scope.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/noteboard/internal/common"
	"github.com/dmitrijs2005/noteboard/internal/dbx"
	"github.com/dmitrijs2005/noteboard/internal/server/config"
	"github.com/dmitrijs2005/noteboard/internal/server/models"
	"github.com/dmitrijs2005/noteboard/internal/server/repositories/repomanager"
)

// dummyPasswordHash is compared against when the username does not exist,
// so that the missing-user and wrong-password paths are indistinguishable
// to the caller in both signal and timing.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// RegisterParams carries the validated registration form fields.
type RegisterParams struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Register hashes the password and inserts the user in one transaction.
// A taken username surfaces as common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*models.User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     p.Username,
		PasswordHash: string(hash),
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    time.Now(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate returns the user when the credentials match. Absent users and
// wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Get returns the user for the given username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}

// Delete removes the user's notes, the user row, and every session
// authenticated as the user, atomically.
func (s *UserService) Delete(ctx context.Context, username string) error {

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Notes(tx).DeleteByOwner(ctx, username); err != nil {
			return fmt.Errorf("error deleting notes: %w", err)
		}
		if err := s.repomanager.Users(tx).Delete(ctx, username); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		if err := s.repomanager.Sessions(tx).DeleteByUsername(ctx, username); err != nil {
			return fmt.Errorf("error deleting sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting account: %w", err)
	}

	return nil
}
