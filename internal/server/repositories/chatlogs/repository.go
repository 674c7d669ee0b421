// Package chatlogs persists assistant conversation history.
package chatlogs

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.ChatLog) (*models.ChatLog, error)
	// History returns the newest limit entries of the user in chronological
	// order. A nil storeID spans every store.
	History(ctx context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error)
}
