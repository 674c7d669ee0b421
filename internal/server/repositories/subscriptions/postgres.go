package subscriptions

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

const subscriptionColumns = `id, user_id, plan_id, status, started_at, expires_at, api_calls_used, created_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartedAt, &s.ExpiresAt, &s.APICallsUsed, &s.CreatedAt)
	return s, err
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	query :=
		`INSERT INTO subscriptions (user_id, plan_id, status, started_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, api_calls_used, created_at`

	err := r.db.QueryRowContext(ctx, query, s.UserID, s.PlanID, s.Status, s.StartedAt, s.ExpiresAt).
		Scan(&s.ID, &s.APICallsUsed, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

func (r *PostgresRepository) GetActive(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		 WHERE user_id = $1 AND status = 'active' AND expires_at > now()
		 ORDER BY expires_at DESC
		 LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ExpireActive(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'expired' WHERE user_id = $1 AND status = 'active'`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, id, status)
}

func (r *PostgresRepository) SetExpiry(ctx context.Context, id string, expiresAt time.Time, status string) error {
	return r.update(ctx, `UPDATE subscriptions SET expires_at = $2, status = $3 WHERE id = $1`, id, expiresAt, status)
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

func (r *PostgresRepository) ConsumeAPICall(ctx context.Context, id string, limit int) (int, error) {
	var (
		used int
		err  error
	)
	if limit > 0 {
		err = r.db.QueryRowContext(ctx,
			`UPDATE subscriptions SET api_calls_used = api_calls_used + 1
			 WHERE id = $1 AND api_calls_used < $2
			 RETURNING api_calls_used`, id, limit).Scan(&used)
	} else {
		err = r.db.QueryRowContext(ctx,
			`UPDATE subscriptions SET api_calls_used = api_calls_used + 1
			 WHERE id = $1
			 RETURNING api_calls_used`, id).Scan(&used)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorLimitReached
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return used, nil
}

func (r *PostgresRepository) CountActiveByPlan(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_id, count(*) FROM subscriptions
		 WHERE status = 'active' AND expires_at > now()
		 GROUP BY plan_id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			plan string
			n    int
		)
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[plan] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
