package users

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// Lock takes a row lock on the profile for the rest of the transaction.
	Lock(ctx context.Context, id string) error
	List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int, error)
	SetRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
	// Counts returns the number of profiles and of active profiles.
	Counts(ctx context.Context) (total, active int, err error)
}
