// Package categories persists store-defined transaction categories.
package categories

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	// List returns custom categories of the store; an empty txType matches both types.
	List(ctx context.Context, storeID, txType string) ([]*models.CustomCategory, error)
	Create(ctx context.Context, c *models.CustomCategory) (*models.CustomCategory, error)
	Delete(ctx context.Context, storeID, id string) error
	Exists(ctx context.Context, storeID, txType, name string) (bool, error)
}
