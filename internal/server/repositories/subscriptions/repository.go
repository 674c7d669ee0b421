// Package subscriptions persists plan subscriptions and their API usage
// counters.
package subscriptions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error)
	GetByID(ctx context.Context, id string) (*models.Subscription, error)

	// GetActive returns the user's active subscription that has not yet
	// expired, or common.ErrorNotFound.
	GetActive(ctx context.Context, userID string) (*models.Subscription, error)

	// ExpireActive marks every active subscription of userID as expired.
	ExpireActive(ctx context.Context, userID string) error

	SetStatus(ctx context.Context, id, status string) error

	// SetExpiry moves expires_at and sets the status in one statement.
	SetExpiry(ctx context.Context, id string, expiresAt time.Time, status string) error

	// ConsumeAPICall increments api_calls_used and returns the new value.
	// When limit > 0 and the counter has already reached it, nothing is
	// updated and common.ErrorLimitReached is returned.
	ConsumeAPICall(ctx context.Context, id string, limit int) (int, error)

	CountActiveByPlan(ctx context.Context) (map[string]int, error)
}
