// Package users provides the profiles repository.
package users

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

const profileColumns = `id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (email, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.Email, p.PasswordHash, p.FullName, p.Role).
		Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	var got string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns one page of profiles ordered by creation time, newest first,
// together with the total number of matching rows. Search matches email or
// full name case-insensitively.
func (r *PostgresRepository) List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int, error) {
	pattern := "%" + f.Search + "%"

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM profiles WHERE email ILIKE $1 OR full_name ILIKE $1`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles
		 WHERE email ILIKE $1 OR full_name ILIKE $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, pattern, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) SetRole(ctx context.Context, id, role string) error {
	return r.update(ctx, `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`, id, role)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, `UPDATE profiles SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) Counts(ctx context.Context) (total, active int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_active) FROM profiles`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, active, nil
}
