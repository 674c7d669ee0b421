// Package photojobs persists catalog-enhancer background removal jobs.
package photojobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, j *models.PhotoJob) (*models.PhotoJob, error)
	GetByID(ctx context.Context, id string) (*models.PhotoJob, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error)
	SetStatus(ctx context.Context, id, status string) error
	Complete(ctx context.Context, id, resultKey string, at time.Time) error
	Fail(ctx context.Context, id, reason string, at time.Time) error
	CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error)
}
