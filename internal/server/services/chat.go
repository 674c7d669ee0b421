package services

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

const (
	maxChatEntries    = 50
	maxChatMessageLen = 4000
	defaultChatLimit  = 50
	maxChatLimit      = 200
)

type ChatEntry struct {
	Role    string
	Message string
}

// ChatService keeps the assistant conversation history of a user.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager) *ChatService {
	return &ChatService{db: db, repomanager: m}
}

// Append stores entries in order, all or nothing.
func (s *ChatService) Append(ctx context.Context, userID string, storeID *string, entries []ChatEntry) ([]*models.ChatLog, error) {
	if len(entries) == 0 {
		return nil, common.Validationf("at least one entry is required")
	}
	if len(entries) > maxChatEntries {
		return nil, common.Validationf("at most %d entries per call", maxChatEntries)
	}
	for i, e := range entries {
		if e.Role != models.ChatRoleUser && e.Role != models.ChatRoleAssistant {
			return nil, common.Validationf("entry %d: role must be user or assistant", i)
		}
		if strings.TrimSpace(e.Message) == "" {
			return nil, common.Validationf("entry %d: message is required", i)
		}
		if utf8.RuneCountInString(e.Message) > maxChatMessageLen {
			return nil, common.Validationf("entry %d: message must be at most %d characters", i, maxChatMessageLen)
		}
	}
	if storeID != nil {
		if _, err := authorizeStore(ctx, s.repomanager, s.db, *storeID, userID); err != nil {
			return nil, err
		}
	}

	out := make([]*models.ChatLog, 0, len(entries))
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ChatLogs(tx)
		for _, e := range entries {
			c, err := repo.Create(ctx, &models.ChatLog{
				UserID:  userID,
				StoreID: storeID,
				Role:    e.Role,
				Message: e.Message,
			})
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History returns up to limit most recent entries, oldest first.
func (s *ChatService) History(ctx context.Context, userID string, storeID *string, limit int) ([]*models.ChatLog, error) {
	limit, _ = pageBounds(limit, 0, defaultChatLimit, maxChatLimit)
	items, err := s.repomanager.ChatLogs(s.db).History(ctx, userID, storeID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.ChatLog{}
	}
	return items, nil
}
