// Package credentialkeys persists the one-shot credential keys (tokens
// table) that activate subscriptions.
package credentialkeys

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, k *models.CredentialKey) (*models.CredentialKey, error)
	GetByID(ctx context.Context, id string) (*models.CredentialKey, error)
	GetByKey(ctx context.Context, key string) (*models.CredentialKey, error)
	List(ctx context.Context, f models.CredentialKeyFilter) ([]*models.CredentialKey, int, error)

	// MarkRedeemed moves an issued key to redeemed. A key that is no longer
	// issued yields common.ErrTokenAlreadyRedeemed.
	MarkRedeemed(ctx context.Context, id, userID, subscriptionID string, redeemedAt, expiresAt time.Time) error

	// Revoke moves a non-revoked key to revoked, or returns common.ErrTokenRevoked.
	Revoke(ctx context.Context, id string, at time.Time) error

	// SetTerms rewrites the granted duration and, for redeemed keys, the expiry.
	SetTerms(ctx context.Context, id string, durationDays int, expiresAt *time.Time) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}
