package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const transactionColumns = `id, store_id, type, category, description, amount_cents, cost_cents, quantity, payment_method, occurred_at, created_by, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.StoreID, &t.Type, &t.Category, &t.Description, &t.AmountCents, &t.CostCents,
		&t.Quantity, &t.PaymentMethod, &t.OccurredAt, &t.CreatedBy, &t.CreatedAt)
	return t, err
}

// where renders the filter as a WHERE clause with positional args.
func where(f models.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.StoreID != "" {
		add("store_id = $%d", f.StoreID)
	}
	if !f.From.IsZero() {
		add("occurred_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("occurred_at < $%d", f.To)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.TransactionFilter) ([]*models.Transaction, error) {
	clause, args := where(f)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + clause + ` ORDER BY occurred_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, f models.TransactionFilter) (int, error) {
	clause, args := where(f)

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM transactions`+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, storeID, id string) (*models.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND store_id = $2`, id, storeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query :=
		`INSERT INTO transactions (store_id, type, category, description, amount_cents, cost_cents, quantity, payment_method, occurred_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.StoreID, t.Type, t.Category, t.Description, t.AmountCents,
		t.CostCents, t.Quantity, t.PaymentMethod, t.OccurredAt, t.CreatedBy).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query :=
		`UPDATE transactions
		 SET type = $3, category = $4, description = $5, amount_cents = $6, cost_cents = $7,
		     quantity = $8, payment_method = $9, occurred_at = $10
		 WHERE id = $1 AND store_id = $2
		 RETURNING created_by, created_at`

	err := r.db.QueryRowContext(ctx, query, t.ID, t.StoreID, t.Type, t.Category, t.Description, t.AmountCents,
		t.CostCents, t.Quantity, t.PaymentMethod, t.OccurredAt).Scan(&t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storeID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND store_id = $2`, id, storeID)
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
