package photojobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const jobColumns = `id, user_id, store_id, status, source_key, result_key, error, created_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (*models.PhotoJob, error) {
	j := &models.PhotoJob{}
	err := row.Scan(&j.ID, &j.UserID, &j.StoreID, &j.Status, &j.SourceKey, &j.ResultKey, &j.Error, &j.CreatedAt, &j.CompletedAt)
	return j, err
}

func (r *PostgresRepository) Create(ctx context.Context, j *models.PhotoJob) (*models.PhotoJob, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO photo_jobs (user_id, store_id, status, source_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`, j.UserID, j.StoreID, j.Status, j.SourceKey).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PhotoJob, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM photo_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM photo_jobs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PhotoJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, `UPDATE photo_jobs SET status = $2 WHERE id = $1`, id, status)
}

func (r *PostgresRepository) Complete(ctx context.Context, id, resultKey string, at time.Time) error {
	return r.update(ctx,
		`UPDATE photo_jobs SET status = 'completed', result_key = $2, completed_at = $3 WHERE id = $1`, id, resultKey, at)
}

func (r *PostgresRepository) Fail(ctx context.Context, id, reason string, at time.Time) error {
	return r.update(ctx,
		`UPDATE photo_jobs SET status = 'failed', error = $2, completed_at = $3 WHERE id = $1`, id, reason, at)
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

func (r *PostgresRepository) CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM photo_jobs WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
