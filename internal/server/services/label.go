package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

var labelTemplates = map[string]bool{
	"price_tag": true,
	"shelf":     true,
	"barcode":   true,
	"custom":    true,
}

type LabelInput struct {
	StoreID  *string
	Name     string
	Template string
	Data     json.RawMessage
}

// LabelService stores label-generator drafts of their owner.
type LabelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLabelService(db *sql.DB, m repomanager.RepositoryManager) *LabelService {
	return &LabelService{db: db, repomanager: m}
}

func (s *LabelService) Create(ctx context.Context, userID string, in LabelInput) (*models.GeneratedLabel, error) {
	l, err := s.validate(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Labels(s.db).Create(ctx, l)
}

func (s *LabelService) Get(ctx context.Context, userID, id string) (*models.GeneratedLabel, error) {
	return s.repomanager.Labels(s.db).GetByID(ctx, userID, id)
}

// List returns the user's drafts, optionally only those of one store.
func (s *LabelService) List(ctx context.Context, userID string, storeID *string) ([]*models.GeneratedLabel, error) {
	items, err := s.repomanager.Labels(s.db).List(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.GeneratedLabel{}
	}
	return items, nil
}

func (s *LabelService) Update(ctx context.Context, userID, id string, in LabelInput) (*models.GeneratedLabel, error) {
	l, err := s.validate(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	l.ID = id
	return s.repomanager.Labels(s.db).Update(ctx, l)
}

func (s *LabelService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Labels(s.db).Delete(ctx, userID, id)
}

func (s *LabelService) validate(ctx context.Context, userID string, in LabelInput) (*models.GeneratedLabel, error) {
	l := &models.GeneratedLabel{
		UserID:   userID,
		StoreID:  in.StoreID,
		Name:     strings.TrimSpace(in.Name),
		Template: in.Template,
		Data:     in.Data,
	}
	if l.Name == "" {
		return nil, common.Validationf("name is required")
	}
	if utf8.RuneCountInString(l.Name) > maxNameLength {
		return nil, common.Validationf("name must be at most %d characters", maxNameLength)
	}
	if !labelTemplates[l.Template] {
		return nil, common.Validationf("template must be one of price_tag, shelf, barcode, custom")
	}
	if !isJSONObject(l.Data) {
		return nil, common.Validationf("data must be a JSON object")
	}
	if l.StoreID != nil {
		if _, err := authorizeStore(ctx, s.repomanager, s.db, *l.StoreID, userID); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var m map[string]any
	return json.Unmarshal(trimmed, &m) == nil
}
