// Package adminlogs persists the audit trail of admin management actions.
package adminlogs

import (
	"context"

	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, l *models.AdminLog) (*models.AdminLog, error)
	List(ctx context.Context, limit, offset int) ([]*models.AdminLog, int, error)
}
