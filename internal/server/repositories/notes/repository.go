package notes

import (
	"context"

	"github.com/dmitrijs2005/noteboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
}
