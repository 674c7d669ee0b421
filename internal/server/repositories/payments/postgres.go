package payments

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

const paymentColumns = `id, user_id, plan_id, amount_cents, currency, provider, provider_ref, status, credential_key_id, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.PaymentRecord, error) {
	p := &models.PaymentRecord{}
	err := row.Scan(&p.ID, &p.UserID, &p.PlanID, &p.AmountCents, &p.Currency, &p.Provider, &p.ProviderRef,
		&p.Status, &p.CredentialKeyID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.PaymentRecord) (*models.PaymentRecord, error) {
	query :=
		`INSERT INTO payment_records (user_id, plan_id, amount_cents, currency, provider)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, status, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.PlanID, p.AmountCents, p.Currency, p.Provider).
		Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.PaymentRecord, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.PaymentRecord, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, id, providerRef, credentialKeyID string) error {
	return r.update(ctx,
		`UPDATE payment_records
		 SET status = 'paid', provider_ref = NULLIF($2, ''), credential_key_id = $3, updated_at = now()
		 WHERE id = $1`, id, providerRef, credentialKeyID)
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id, providerRef string) error {
	return r.update(ctx,
		`UPDATE payment_records
		 SET status = 'failed', provider_ref = NULLIF($2, ''), updated_at = now()
		 WHERE id = $1`, id, providerRef)
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
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

func (r *PostgresRepository) RevenueCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(sum(amount_cents), 0) FROM payment_records WHERE status = 'paid'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
