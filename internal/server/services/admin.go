package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

// Management actions accepted by AdminService.Execute.
const (
	ActionListUsers      = "list_users"
	ActionGetUser        = "get_user"
	ActionSetRole        = "set_role"
	ActionSetActive      = "set_active"
	ActionChangePlan     = "change_plan"
	ActionGenerateTokens = "generate_tokens"
	ActionListTokens     = "list_tokens"
	ActionRevokeToken    = "revoke_token"
	ActionExtendToken    = "extend_token"
	ActionStats          = "stats"
	ActionListLogs       = "list_logs"
)

// Page is a generic paginated listing.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// UserDetails is the get_user answer.
type UserDetails struct {
	Profile      *models.Profile             `json:"profile"`
	Subscription *models.SubscriptionSummary `json:"subscription"`
	Stores       []*models.Store             `json:"stores"`
}

// adminAction runs either read-only on the pool or, for mutating actions,
// inside the transaction that also writes the admin log entry.
type adminAction struct {
	run   func(ctx context.Context, adminID string, params json.RawMessage) (result any, targetID string, err error)
	apply func(ctx context.Context, tx dbx.DBTX, adminID string, params json.RawMessage) (result any, targetID string, err error)
}

// AdminService runs the operator management actions and keeps their audit
// trail.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	keys        *CredentialKeyService
	log         logging.Logger

	actions map[string]adminAction
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, keys *CredentialKeyService, log logging.Logger) *AdminService {
	s := &AdminService{db: db, repomanager: m, keys: keys, log: log.With("module", "admin")}
	s.actions = map[string]adminAction{
		ActionListUsers:      {run: s.listUsers},
		ActionGetUser:        {run: s.getUser},
		ActionSetRole:        {apply: s.setRole},
		ActionSetActive:      {apply: s.setActive},
		ActionChangePlan:     {apply: s.changePlan},
		ActionGenerateTokens: {apply: s.generateTokens},
		ActionListTokens:     {run: s.listTokens},
		ActionRevokeToken:    {apply: s.revokeToken},
		ActionExtendToken:    {apply: s.extendToken},
		ActionStats:          {run: s.stats},
		ActionListLogs:       {run: s.listLogs},
	}
	return s
}

// Execute dispatches body, a JSON object {"action": ..., <params>}, on
// behalf of adminID. A mutating action and its admin log entry commit
// together or not at all.
func (s *AdminService) Execute(ctx context.Context, adminID string, body []byte) (any, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, common.Validationf("request body must be a JSON object")
	}

	act, ok := s.actions[head.Action]
	if !ok {
		return nil, common.Validationf("unknown action %q", head.Action)
	}

	if act.apply == nil {
		res, _, err := act.run(ctx, adminID, body)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	var target string
	res, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (any, error) {
		res, t, err := act.apply(ctx, tx, adminID, body)
		if err != nil {
			return nil, err
		}
		target = t
		if _, err := s.repomanager.AdminLogs(tx).Create(ctx, &models.AdminLog{
			AdminID:  adminID,
			Action:   head.Action,
			TargetID: t,
			Details:  json.RawMessage(body),
		}); err != nil {
			return nil, fmt.Errorf("write admin log: %w", err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "admin action", "admin_id", adminID, "action", head.Action, "target_id", target)
	return res, nil
}

// Stats is the dashboard overview; it is recomputed on every call.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	st := &models.Stats{}
	var err error

	if st.TotalUsers, st.ActiveUsers, err = s.repomanager.Users(s.db).Counts(ctx); err != nil {
		return nil, err
	}
	if st.ActiveSubscriptions, err = s.repomanager.Subscriptions(s.db).CountActiveByPlan(ctx); err != nil {
		return nil, err
	}
	if st.Stores, err = s.repomanager.Stores(s.db).Count(ctx); err != nil {
		return nil, err
	}
	if st.Transactions, err = s.repomanager.Transactions(s.db).Count(ctx, models.TransactionFilter{}); err != nil {
		return nil, err
	}
	if st.Tokens, err = s.repomanager.CredentialKeys(s.db).CountByStatus(ctx); err != nil {
		return nil, err
	}
	if st.RevenueCents, err = s.repomanager.Payments(s.db).RevenueCents(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// requireAdmin re-checks the role in the database; the JWT may predate a
// demotion.
func (s *AdminService) requireAdmin(ctx context.Context, adminID string) error {
	p, err := s.repomanager.Users(s.db).GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorForbidden
		}
		return err
	}
	if p.Role != models.RoleAdmin || !p.IsActive {
		return common.ErrorForbidden
	}
	return nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return common.Validationf("invalid parameters: %v", err)
	}
	return nil
}

func (s *AdminService) stats(ctx context.Context, _ string, _ json.RawMessage) (any, string, error) {
	st, err := s.Stats(ctx)
	return st, "", err
}

func (s *AdminService) listUsers(ctx context.Context, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		Search string `json:"search"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	limit, offset := pageBounds(p.Limit, p.Offset, 50, 500)

	items, total, err := s.repomanager.Users(s.db).List(ctx, models.ProfileFilter{
		Search: strings.TrimSpace(p.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, "", err
	}
	if items == nil {
		items = []*models.Profile{}
	}
	return &Page[*models.Profile]{Items: items, Total: total, Limit: limit, Offset: offset}, "", nil
}

func (s *AdminService) getUser(ctx context.Context, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		UserID string `json:"user_id"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.UserID == "" {
		return nil, "", common.Validationf("user_id is required")
	}

	prof, err := s.repomanager.Users(s.db).GetByID(ctx, p.UserID)
	if err != nil {
		return nil, "", err
	}
	sum, err := loadSummary(ctx, s.repomanager, s.db, p.UserID)
	if err != nil && !errors.Is(err, common.ErrNoActiveSubscription) {
		return nil, "", err
	}
	stores, err := s.repomanager.Stores(s.db).ListForUser(ctx, p.UserID)
	if err != nil {
		return nil, "", err
	}
	return &UserDetails{Profile: prof, Subscription: sum, Stores: stores}, p.UserID, nil
}

func (s *AdminService) setRole(ctx context.Context, tx dbx.DBTX, adminID string, raw json.RawMessage) (any, string, error) {
	var p struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.UserID == "" {
		return nil, "", common.Validationf("user_id is required")
	}
	if p.Role != models.RoleUser && p.Role != models.RoleAdmin {
		return nil, "", common.Validationf("role must be user or admin")
	}
	if p.UserID == adminID && p.Role != models.RoleAdmin {
		return nil, "", common.Validationf("admins cannot demote themselves")
	}

	repo := s.repomanager.Users(tx)
	if err := repo.SetRole(ctx, p.UserID, p.Role); err != nil {
		return nil, "", err
	}
	prof, err := repo.GetByID(ctx, p.UserID)
	return prof, p.UserID, err
}

func (s *AdminService) setActive(ctx context.Context, tx dbx.DBTX, adminID string, raw json.RawMessage) (any, string, error) {
	var p struct {
		UserID string `json:"user_id"`
		Active *bool  `json:"active"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.UserID == "" || p.Active == nil {
		return nil, "", common.Validationf("user_id and active are required")
	}
	if p.UserID == adminID && !*p.Active {
		return nil, "", common.Validationf("admins cannot deactivate themselves")
	}

	users := s.repomanager.Users(tx)
	if err := users.SetActive(ctx, p.UserID, *p.Active); err != nil {
		return nil, "", err
	}
	if !*p.Active {
		if err := s.repomanager.RefreshTokens(tx).DeleteForUser(ctx, p.UserID); err != nil {
			return nil, "", err
		}
	}
	prof, err := users.GetByID(ctx, p.UserID)
	return prof, p.UserID, err
}

func (s *AdminService) changePlan(ctx context.Context, tx dbx.DBTX, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		UserID       string `json:"user_id"`
		PlanID       string `json:"plan_id"`
		DurationDays int    `json:"duration_days"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.UserID == "" || p.PlanID == "" {
		return nil, "", common.Validationf("user_id and plan_id are required")
	}

	if _, err := s.repomanager.Users(tx).GetByID(ctx, p.UserID); err != nil {
		return nil, "", err
	}
	plan, err := s.repomanager.Plans(tx).GetByID(ctx, p.PlanID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.Validationf("unknown plan %q", p.PlanID)
		}
		return nil, "", err
	}
	days := p.DurationDays
	if days == 0 {
		days = plan.DurationDays
	}
	if days < 1 || days > maxDurationDays {
		return nil, "", common.Validationf("duration_days must be between 1 and %d", maxDurationDays)
	}

	now := timeNow().UTC()
	subs := s.repomanager.Subscriptions(tx)
	if err := subs.ExpireActive(ctx, p.UserID); err != nil {
		return nil, "", err
	}
	sub, err := subs.Create(ctx, &models.Subscription{
		UserID:    p.UserID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionActive,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, days),
	})
	if err != nil {
		return nil, "", err
	}
	return sub, p.UserID, nil
}

func (s *AdminService) generateTokens(ctx context.Context, tx dbx.DBTX, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		PlanID       string `json:"plan_id"`
		DurationDays int    `json:"duration_days"`
		Count        int    `json:"count"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.Count == 0 {
		p.Count = 1
	}
	if err := checkKeyCount(p.Count); err != nil {
		return nil, "", err
	}
	keys, err := issueKeys(ctx, s.repomanager, tx, p.PlanID, p.DurationDays, p.Count, nil)
	if err != nil {
		return nil, "", err
	}
	return keys, p.PlanID, nil
}

func (s *AdminService) listTokens(ctx context.Context, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		Status string `json:"status"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	f := models.CredentialKeyFilter{Status: p.Status, Limit: p.Limit, Offset: p.Offset}
	items, total, err := s.keys.List(ctx, f)
	if err != nil {
		return nil, "", err
	}
	if items == nil {
		items = []*models.CredentialKey{}
	}
	limit, offset := pageBounds(p.Limit, p.Offset, 50, 500)
	return &Page[*models.CredentialKey]{Items: items, Total: total, Limit: limit, Offset: offset}, "", nil
}

func (s *AdminService) revokeToken(ctx context.Context, tx dbx.DBTX, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		TokenID string `json:"token_id"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.TokenID == "" {
		return nil, "", common.Validationf("token_id is required")
	}
	k, err := revokeKey(ctx, s.repomanager, tx, p.TokenID)
	if err != nil {
		return nil, "", err
	}
	return k, p.TokenID, nil
}

func (s *AdminService) extendToken(ctx context.Context, tx dbx.DBTX, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		TokenID string `json:"token_id"`
		Days    int    `json:"days"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	if p.TokenID == "" {
		return nil, "", common.Validationf("token_id is required")
	}
	if err := checkExtendDays(p.Days); err != nil {
		return nil, "", err
	}
	k, err := extendKey(ctx, s.repomanager, tx, p.TokenID, p.Days)
	if err != nil {
		return nil, "", err
	}
	return k, p.TokenID, nil
}

func (s *AdminService) listLogs(ctx context.Context, _ string, raw json.RawMessage) (any, string, error) {
	var p struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, "", err
	}
	limit, offset := pageBounds(p.Limit, p.Offset, 50, 500)
	items, total, err := s.repomanager.AdminLogs(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, "", err
	}
	if items == nil {
		items = []*models.AdminLog{}
	}
	return &Page[*models.AdminLog]{Items: items, Total: total, Limit: limit, Offset: offset}, "", nil
}
