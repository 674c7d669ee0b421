// Package transactions persists the bookkeeping ledger of each store.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	// List returns matching rows ordered by occurred_at DESC. A Limit of
	// zero returns every matching row.
	List(ctx context.Context, f models.TransactionFilter) ([]*models.Transaction, error)
	// Count returns the number of rows matching f, ignoring Limit/Offset.
	// An empty StoreID counts across all stores.
	Count(ctx context.Context, f models.TransactionFilter) (int, error)

	GetByID(ctx context.Context, storeID, id string) (*models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	Update(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, storeID, id string) error
}
