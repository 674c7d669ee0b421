package stores

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

const storeColumns = `s.id, s.owner_id, s.name, s.address, s.currency, s.timezone, s.created_at, s.updated_at`

func scanStore(row interface{ Scan(...any) error }, extra ...any) (*models.Store, error) {
	s := &models.Store{}
	dest := append([]any{&s.ID, &s.OwnerID, &s.Name, &s.Address, &s.Currency, &s.Timezone, &s.CreatedAt, &s.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return s, err
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Store) (*models.Store, error) {
	query :=
		`INSERT INTO stores (owner_id, name, address, currency, timezone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, s.OwnerID, s.Name, s.Address, s.Currency, s.Timezone).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores s WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Store, error) {
	query := `SELECT ` + storeColumns + `, sr.role
		 FROM stores s
		 JOIN store_roles sr ON sr.store_id = s.id
		 WHERE sr.user_id = $1
		 ORDER BY s.created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Store
	for rows.Next() {
		var role string
		s, err := scanStore(rows, &role)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.MyRole = role
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.Store) (*models.Store, error) {
	query :=
		`UPDATE stores
		 SET name = $2, address = $3, currency = $4, timezone = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING owner_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.Address, s.Currency, s.Timezone).
		Scan(&s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
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

func (r *PostgresRepository) CountOwned(ctx context.Context, ownerID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM stores WHERE owner_id = $1`, ownerID)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM stores`)
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
