package credentialkeys

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

const keyColumns = `id, key, plan_id, duration_days, status, user_id, payment_id, subscription_id, created_at, redeemed_at, expires_at, revoked_at`

func scanKey(row interface{ Scan(...any) error }) (*models.CredentialKey, error) {
	k := &models.CredentialKey{}
	err := row.Scan(&k.ID, &k.Key, &k.PlanID, &k.DurationDays, &k.Status, &k.UserID, &k.PaymentID,
		&k.SubscriptionID, &k.CreatedAt, &k.RedeemedAt, &k.ExpiresAt, &k.RevokedAt)
	return k, err
}

func (r *PostgresRepository) Create(ctx context.Context, k *models.CredentialKey) (*models.CredentialKey, error) {
	query :=
		`INSERT INTO tokens (key, plan_id, duration_days, payment_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query, k.Key, k.PlanID, k.DurationDays, k.PaymentID).
		Scan(&k.ID, &k.Status, &k.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return k, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.CredentialKey, error) {
	return r.getOne(ctx, `SELECT `+keyColumns+` FROM tokens WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*models.CredentialKey, error) {
	return r.getOne(ctx, `SELECT `+keyColumns+` FROM tokens WHERE key = $1`, key)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.CredentialKey, error) {
	k, err := scanKey(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return k, nil
}

// List pages through keys, newest first. An empty Status matches every key.
func (r *PostgresRepository) List(ctx context.Context, f models.CredentialKeyFilter) ([]*models.CredentialKey, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM tokens WHERE ($1 = '' OR status = $1)`, f.Status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + keyColumns + ` FROM tokens
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.CredentialKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}

func (r *PostgresRepository) MarkRedeemed(ctx context.Context, id, userID, subscriptionID string, redeemedAt, expiresAt time.Time) error {
	query :=
		`UPDATE tokens
		 SET status = 'redeemed', user_id = $2, subscription_id = $3, redeemed_at = $4, expires_at = $5
		 WHERE id = $1 AND status = 'issued'`

	n, err := r.exec(ctx, query, id, userID, subscriptionID, redeemedAt, expiresAt)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.notRedeemable(ctx, id)
	}
	return nil
}

// notRedeemable explains why MarkRedeemed matched no issued key.
func (r *PostgresRepository) notRedeemable(ctx context.Context, id string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM tokens WHERE id = $1`, id).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case status == models.KeyRevoked:
		return common.ErrTokenRevoked
	default:
		return common.ErrTokenAlreadyRedeemed
	}
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	n, err := r.exec(ctx,
		`UPDATE tokens SET status = 'revoked', revoked_at = $2 WHERE id = $1 AND status <> 'revoked'`, id, at)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrTokenRevoked
	}
	return nil
}

func (r *PostgresRepository) SetTerms(ctx context.Context, id string, durationDays int, expiresAt *time.Time) error {
	n, err := r.exec(ctx, `UPDATE tokens SET duration_days = $2, expires_at = $3 WHERE id = $1`, id, durationDays, expiresAt)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM tokens GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := map[string]int{models.KeyIssued: 0, models.KeyRedeemed: 0, models.KeyRevoked: 0}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
