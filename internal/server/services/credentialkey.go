package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

const (
	keyPrefix      = "LIRRA"
	keyGroups      = 4
	maxKeysPerCall = 100
)

// CredentialKeyService issues, redeems, revokes and extends credential keys.
type CredentialKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCredentialKeyService(db *sql.DB, m repomanager.RepositoryManager) *CredentialKeyService {
	return &CredentialKeyService{db: db, repomanager: m}
}

// Generate issues count keys for planID. A zero durationDays takes the
// plan's default duration.
func (s *CredentialKeyService) Generate(ctx context.Context, planID string, durationDays, count int) ([]*models.CredentialKey, error) {
	if err := checkKeyCount(count); err != nil {
		return nil, err
	}
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) ([]*models.CredentialKey, error) {
		return issueKeys(ctx, s.repomanager, tx, planID, durationDays, count, nil)
	})
}

func checkKeyCount(count int) error {
	if count < 1 || count > maxKeysPerCall {
		return common.Validationf("count must be between 1 and %d", maxKeysPerCall)
	}
	return nil
}

func (s *CredentialKeyService) List(ctx context.Context, f models.CredentialKeyFilter) ([]*models.CredentialKey, int, error) {
	switch f.Status {
	case "", models.KeyIssued, models.KeyRedeemed, models.KeyRevoked:
	default:
		return nil, 0, common.Validationf("unknown status %q", f.Status)
	}
	f.Limit, f.Offset = pageBounds(f.Limit, f.Offset, 50, 500)
	return s.repomanager.CredentialKeys(s.db).List(ctx, f)
}

// Redeem activates a new subscription for userID from an issued key. Any
// subscription the user had active is expired in the same transaction.
func (s *CredentialKeyService) Redeem(ctx context.Context, userID, key string) (*models.Subscription, error) {
	key = common.NormalizeCredentialKey(key)
	if key == "" {
		return nil, common.Validationf("key is required")
	}

	k, err := s.repomanager.CredentialKeys(s.db).GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	switch k.Status {
	case models.KeyRevoked:
		return nil, common.ErrTokenRevoked
	case models.KeyRedeemed:
		return nil, common.ErrTokenAlreadyRedeemed
	}

	now := timeNow().UTC()
	expires := now.AddDate(0, 0, k.DurationDays)

	var sub *models.Subscription
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		subs := s.repomanager.Subscriptions(tx)
		if err := subs.ExpireActive(ctx, userID); err != nil {
			return err
		}

		var err error
		sub, err = subs.Create(ctx, &models.Subscription{
			UserID:    userID,
			PlanID:    k.PlanID,
			Status:    models.SubscriptionActive,
			StartedAt: now,
			ExpiresAt: expires,
		})
		if err != nil {
			return err
		}

		return s.repomanager.CredentialKeys(tx).MarkRedeemed(ctx, k.ID, userID, sub.ID, now, expires)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Revoke voids a key. A redeemed key's subscription is cancelled with it.
func (s *CredentialKeyService) Revoke(ctx context.Context, id string) (*models.CredentialKey, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.CredentialKey, error) {
		return revokeKey(ctx, s.repomanager, tx, id)
	})
}

// Extend adds days to a key. An issued key grants that much more time once
// redeemed; a redeemed key moves its expiry (counted from now if it already
// lapsed) and drags the linked subscription along, re-activating it unless
// the user has since moved to another subscription.
func (s *CredentialKeyService) Extend(ctx context.Context, id string, days int) (*models.CredentialKey, error) {
	if err := checkExtendDays(days); err != nil {
		return nil, err
	}
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.CredentialKey, error) {
		return extendKey(ctx, s.repomanager, tx, id, days)
	})
}

func checkExtendDays(days int) error {
	if days < 1 || days > maxDurationDays {
		return common.Validationf("days must be between 1 and %d", maxDurationDays)
	}
	return nil
}

func revokeKey(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX, id string) (*models.CredentialKey, error) {
	repo := rm.CredentialKeys(tx)
	k, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.Status == models.KeyRevoked {
		return nil, common.ErrTokenRevoked
	}

	now := timeNow().UTC()
	if err := repo.Revoke(ctx, k.ID, now); err != nil {
		return nil, err
	}
	if k.SubscriptionID != nil {
		if err := rm.Subscriptions(tx).SetStatus(ctx, *k.SubscriptionID, models.SubscriptionCancelled); err != nil {
			return nil, err
		}
	}

	k.Status = models.KeyRevoked
	k.RevokedAt = &now
	return k, nil
}

func extendKey(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX, id string, days int) (*models.CredentialKey, error) {
	repo := rm.CredentialKeys(tx)
	k, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.Status == models.KeyRevoked {
		return nil, common.ErrTokenRevoked
	}
	k.DurationDays += days

	if k.Status == models.KeyIssued {
		if err := repo.SetTerms(ctx, k.ID, k.DurationDays, nil); err != nil {
			return nil, err
		}
		return k, nil
	}

	now := timeNow().UTC()
	base := now
	if k.ExpiresAt != nil && k.ExpiresAt.After(now) {
		base = *k.ExpiresAt
	}
	expires := base.AddDate(0, 0, days)
	k.ExpiresAt = &expires

	if err := repo.SetTerms(ctx, k.ID, k.DurationDays, &expires); err != nil {
		return nil, err
	}
	if k.SubscriptionID != nil {
		if err := extendSubscription(ctx, rm, tx, *k.SubscriptionID, expires); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func extendSubscription(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX, subID string, expires time.Time) error {
	subs := rm.Subscriptions(tx)
	sub, err := subs.GetByID(ctx, subID)
	if err != nil {
		return err
	}

	status := sub.Status
	if status == models.SubscriptionExpired {
		current, err := subs.GetActive(ctx, sub.UserID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			status = models.SubscriptionActive
		case err != nil:
			return err
		case current.ID == sub.ID:
			status = models.SubscriptionActive
		}
	}
	return subs.SetExpiry(ctx, sub.ID, expires, status)
}

// issueKeys inserts count fresh keys inside tx. It is shared with the
// payment webhook, which issues exactly one key per paid payment.
func issueKeys(ctx context.Context, rm repomanager.RepositoryManager, tx dbx.DBTX, planID string, durationDays, count int, paymentID *string) ([]*models.CredentialKey, error) {
	plan, err := rm.Plans(tx).GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Validationf("unknown plan %q", planID)
		}
		return nil, err
	}
	if durationDays == 0 {
		durationDays = plan.DurationDays
	}
	if durationDays < 1 || durationDays > maxDurationDays {
		return nil, common.Validationf("duration_days must be between 1 and %d", maxDurationDays)
	}

	repo := rm.CredentialKeys(tx)
	keys := make([]*models.CredentialKey, 0, count)
	for range count {
		key, err := common.MakeCredentialKey(keyPrefix, keyGroups)
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		k, err := repo.Create(ctx, &models.CredentialKey{
			Key:          key,
			PlanID:       plan.ID,
			DurationDays: durationDays,
			Status:       models.KeyIssued,
			PaymentID:    paymentID,
		})
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
