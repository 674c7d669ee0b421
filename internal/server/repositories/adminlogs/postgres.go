package adminlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.AdminLog) (*models.AdminLog, error) {
	details := []byte(l.Details)
	if len(details) == 0 {
		details = []byte("{}")
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO admin_logs (admin_id, action, target_id, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`, l.AdminID, l.Action, l.TargetID, details).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.AdminLog, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM admin_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, admin_id, action, target_id, details, created_at FROM admin_logs
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AdminLog
	for rows.Next() {
		l := &models.AdminLog{}
		var details []byte
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.TargetID, &details, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		l.Details = details
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}
