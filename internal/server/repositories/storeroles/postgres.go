package storeroles

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

func (r *PostgresRepository) Grant(ctx context.Context, storeID, userID, role string) error {
	query :=
		`INSERT INTO store_roles (store_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (store_id, user_id) DO UPDATE SET role = EXCLUDED.role`

	if _, err := r.db.ExecContext(ctx, query, storeID, userID, role); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, storeID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM store_roles WHERE store_id = $1 AND user_id = $2 AND role <> 'owner'`, storeID, userID)
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

func (r *PostgresRepository) GetRole(ctx context.Context, storeID, userID string) (string, error) {
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM store_roles WHERE store_id = $1 AND user_id = $2`, storeID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

func (r *PostgresRepository) List(ctx context.Context, storeID string) ([]*models.StoreRole, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT store_id, user_id, role, created_at FROM store_roles WHERE store_id = $1 ORDER BY created_at`, storeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.StoreRole
	for rows.Next() {
		sr := &models.StoreRole{}
		if err := rows.Scan(&sr.StoreID, &sr.UserID, &sr.Role, &sr.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
