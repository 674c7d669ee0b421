// Package services contains server-side business logic. Each service owns
// one area of the API and reaches Postgres through the repository manager,
// opening transactions with dbx.WithTx where several writes must agree.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

// timeNow is swapped in tests.
var timeNow = time.Now

const maxDurationDays = 3650

// loadSummary returns the user's active subscription with its plan and the
// number of stores the user owns.
func loadSummary(ctx context.Context, rm repomanager.RepositoryManager, db dbx.DBTX, userID string) (*models.SubscriptionSummary, error) {
	sub, err := rm.Subscriptions(db).GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoActiveSubscription
		}
		return nil, err
	}

	plan, err := rm.Plans(db).GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", sub.PlanID, err)
	}

	count, err := rm.Stores(db).CountOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.SubscriptionSummary{Subscription: sub, Plan: plan, StoreCount: count}, nil
}

// consumeAPICall charges one metered call to the user's active subscription.
func consumeAPICall(ctx context.Context, rm repomanager.RepositoryManager, db dbx.DBTX, userID string) (*models.SubscriptionSummary, error) {
	sum, err := loadSummary(ctx, rm, db, userID)
	if err != nil {
		return nil, err
	}

	used, err := rm.Subscriptions(db).ConsumeAPICall(ctx, sum.Subscription.ID, sum.Plan.MaxAPICalls)
	if err != nil {
		return nil, err
	}
	sum.Subscription.APICallsUsed = used
	return sum, nil
}

// authorizeStore returns the caller's role on the store. Callers without
// any role get ErrorNotFound so store ids do not leak; callers whose role is
// not in allowed get ErrorForbidden. An empty allowed list accepts any role.
func authorizeStore(ctx context.Context, rm repomanager.RepositoryManager, db dbx.DBTX, storeID, userID string, allowed ...string) (string, error) {
	role, err := rm.StoreRoles(db).GetRole(ctx, storeID, userID)
	if err != nil {
		return "", err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, role) {
		return "", common.ErrorForbidden
	}
	return role, nil
}

// withinLimit reports whether used is below limit. Zero limits are unlimited.
func withinLimit(used, limit int) bool {
	return limit <= 0 || used < limit
}

func pageBounds(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
