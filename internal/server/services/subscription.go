package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

// SubscriptionService exposes plans and the caller's current subscription.
type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m}
}

func (s *SubscriptionService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return s.repomanager.Plans(s.db).List(ctx)
}

// Current returns the active subscription summary or ErrNoActiveSubscription.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*models.SubscriptionSummary, error) {
	return loadSummary(ctx, s.repomanager, s.db, userID)
}

// ConsumeAPICall charges one metered call; ErrorLimitReached once the plan's
// allowance is used up.
func (s *SubscriptionService) ConsumeAPICall(ctx context.Context, userID string) (*models.SubscriptionSummary, error) {
	return consumeAPICall(ctx, s.repomanager, s.db, userID)
}
