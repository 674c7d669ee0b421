// Package dashboardusers persists the staff roster of a store.
package dashboardusers

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, storeID string) ([]*models.DashboardUser, error)
	Create(ctx context.Context, u *models.DashboardUser) (*models.DashboardUser, error)
	// Update rewrites name, email and role of a roster entry of storeID.
	Update(ctx context.Context, u *models.DashboardUser) (*models.DashboardUser, error)
	SetActive(ctx context.Context, storeID, id string, active bool) error
}
