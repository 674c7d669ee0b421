package dashboardusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, storeID string) ([]*models.DashboardUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, store_id, name, email, role, is_active, created_at
		 FROM dashboard_users WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.DashboardUser
	for rows.Next() {
		u := &models.DashboardUser{}
		if err := rows.Scan(&u.ID, &u.StoreID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.DashboardUser) (*models.DashboardUser, error) {
	query :=
		`INSERT INTO dashboard_users (store_id, name, email, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_active, created_at`

	err := r.db.QueryRowContext(ctx, query, u.StoreID, u.Name, u.Email, u.Role).Scan(&u.ID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *models.DashboardUser) (*models.DashboardUser, error) {
	query :=
		`UPDATE dashboard_users SET name = $3, email = $4, role = $5
		 WHERE id = $1 AND store_id = $2
		 RETURNING is_active, created_at`

	err := r.db.QueryRowContext(ctx, query, u.ID, u.StoreID, u.Name, u.Email, u.Role).Scan(&u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, storeID, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE dashboard_users SET is_active = $3 WHERE id = $1 AND store_id = $2`, id, storeID, active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
