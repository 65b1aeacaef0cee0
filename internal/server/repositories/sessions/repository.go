package sessions

import (
	"context"

	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	SetFlash(ctx context.Context, id string, message string) error
	ConsumeFlash(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	DeleteByUsername(ctx context.Context, username string) error
}
