package categories

import (
	"context"
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

func (r *PostgresRepository) List(ctx context.Context, storeID, txType string) ([]*models.CustomCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, store_id, name, type, created_at FROM custom_categories
		 WHERE store_id = $1 AND ($2 = '' OR type = $2)
		 ORDER BY name`, storeID, txType)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.CustomCategory
	for rows.Next() {
		c := &models.CustomCategory{}
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.CustomCategory) (*models.CustomCategory, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO custom_categories (store_id, name, type) VALUES ($1, $2, $3) RETURNING id, created_at`,
		c.StoreID, c.Name, c.Type).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storeID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_categories WHERE id = $1 AND store_id = $2`, id, storeID)
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

func (r *PostgresRepository) Exists(ctx context.Context, storeID, txType, name string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM custom_categories WHERE store_id = $1 AND type = $2 AND name = $3)`,
		storeID, txType, name).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
