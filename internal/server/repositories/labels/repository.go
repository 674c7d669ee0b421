// Package labels persists saved label-generator drafts.
package labels

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

// Repository methods are scoped to the owning user: a label of another
// user is reported as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error)
	GetByID(ctx context.Context, userID, id string) (*models.GeneratedLabel, error)
	List(ctx context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error)
	Update(ctx context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error)
	Delete(ctx context.Context, userID, id string) error
}
