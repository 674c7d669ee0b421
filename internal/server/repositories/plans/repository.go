// Package plans exposes the read-only catalogue of subscription tiers.
package plans

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Plan, error)
	GetByID(ctx context.Context, id string) (*models.Plan, error)
}
