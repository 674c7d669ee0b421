// Package storeroles persists per-store access grants.
package storeroles

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	// Grant inserts or replaces the role of userID on storeID.
	Grant(ctx context.Context, storeID, userID, role string) error
	// Revoke removes a non-owner role; an absent grant is common.ErrorNotFound.
	Revoke(ctx context.Context, storeID, userID string) error
	// GetRole returns the user's role on the store or common.ErrorNotFound.
	GetRole(ctx context.Context, storeID, userID string) (string, error)
	List(ctx context.Context, storeID string) ([]*models.StoreRole, error)
}
