// Package payments persists checkout records and their provider state.
package payments

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.PaymentRecord) (*models.PaymentRecord, error)
	GetByID(ctx context.Context, id string) (*models.PaymentRecord, error)

	// GetForUpdate reads a payment and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.PaymentRecord, error)

	MarkPaid(ctx context.Context, id, providerRef, credentialKeyID string) error
	MarkFailed(ctx context.Context, id, providerRef string) error
	RevenueCents(ctx context.Context) (int64, error)
}
