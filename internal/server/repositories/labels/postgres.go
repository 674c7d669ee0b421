package labels

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

const labelColumns = `id, user_id, store_id, name, template, data, created_at, updated_at`

func scanLabel(row interface{ Scan(...any) error }) (*models.GeneratedLabel, error) {
	l := &models.GeneratedLabel{}
	var data []byte
	if err := row.Scan(&l.ID, &l.UserID, &l.StoreID, &l.Name, &l.Template, &data, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Data = data
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO generated_labels (user_id, store_id, name, template, data)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		l.UserID, l.StoreID, l.Name, l.Template, []byte(l.Data)).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.GeneratedLabel, error) {
	l, err := scanLabel(r.db.QueryRowContext(ctx,
		`SELECT `+labelColumns+` FROM generated_labels WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

// List returns the user's labels, most recently edited first. A nil
// storeID lists labels of every store.
func (r *PostgresRepository) List(ctx context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM generated_labels
		 WHERE user_id = $1 AND ($2::uuid IS NULL OR store_id = $2)
		 ORDER BY updated_at DESC`, userID, storeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.GeneratedLabel
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, l *models.GeneratedLabel) (*models.GeneratedLabel, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE generated_labels
		 SET store_id = $3, name = $4, template = $5, data = $6, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING created_at, updated_at`,
		l.ID, l.UserID, l.StoreID, l.Name, l.Template, []byte(l.Data)).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM generated_labels WHERE id = $1 AND user_id = $2`, id, userID)
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
