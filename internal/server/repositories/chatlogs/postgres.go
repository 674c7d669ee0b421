package chatlogs

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

func (r *PostgresRepository) Create(ctx context.Context, c *models.ChatLog) (*models.ChatLog, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO chat_logs (user_id, store_id, role, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`, c.UserID, c.StoreID, c.Role, c.Message).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) History(ctx context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, store_id, role, message, created_at FROM (
		     SELECT id, user_id, store_id, role, message, created_at FROM chat_logs
		     WHERE user_id = $1 AND ($2::uuid IS NULL OR store_id = $2)
		     ORDER BY created_at DESC, id DESC
		     LIMIT $3
		 ) recent
		 ORDER BY created_at, id`, userID, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ChatLog
	for rows.Next() {
		c := &models.ChatLog{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.StoreID, &c.Role, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
