// Package stores persists tenant-owned store records.
package stores

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Store) (*models.Store, error)
	GetByID(ctx context.Context, id string) (*models.Store, error)

	// ListForUser returns every store on which userID holds a role, with
	// MyRole set.
	ListForUser(ctx context.Context, userID string) ([]*models.Store, error)

	Update(ctx context.Context, s *models.Store) (*models.Store, error)
	Delete(ctx context.Context, id string) error
	CountOwned(ctx context.Context, ownerID string) (int, error)
	Count(ctx context.Context) (int, error)
}
