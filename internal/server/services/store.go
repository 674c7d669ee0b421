package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/dbx"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

const maxNameLength = 200

// StoreInput carries the editable fields of a store.
type StoreInput struct {
	Name     string
	Address  string
	Currency string
	Timezone string
}

// StaffInput carries the editable fields of a roster entry.
type StaffInput struct {
	Name  string
	Email string
	Role  string
}

// StoreService manages stores, per-store roles and the staff roster.
type StoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStoreService(db *sql.DB, m repomanager.RepositoryManager) *StoreService {
	return &StoreService{db: db, repomanager: m}
}

// Create opens a store for ownerID. The owner must hold an active
// subscription whose plan still allows another store; the profile row is
// locked so concurrent creates cannot overshoot the limit.
func (s *StoreService) Create(ctx context.Context, ownerID string, in StoreInput) (*models.Store, error) {
	st, err := normalizeStore(in)
	if err != nil {
		return nil, err
	}
	st.OwnerID = ownerID

	var out *models.Store
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, ownerID); err != nil {
			return err
		}

		sum, err := loadSummary(ctx, s.repomanager, tx, ownerID)
		if err != nil {
			return err
		}
		if !withinLimit(sum.StoreCount, sum.Plan.MaxStores) {
			return common.ErrorLimitReached
		}

		out, err = s.repomanager.Stores(tx).Create(ctx, st)
		if err != nil {
			return err
		}
		out.MyRole = models.StoreRoleOwner
		return s.repomanager.StoreRoles(tx).Grant(ctx, out.ID, ownerID, models.StoreRoleOwner)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StoreService) List(ctx context.Context, userID string) ([]*models.Store, error) {
	return s.repomanager.Stores(s.db).ListForUser(ctx, userID)
}

func (s *StoreService) Get(ctx context.Context, userID, storeID string) (*models.Store, error) {
	role, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID)
	if err != nil {
		return nil, err
	}
	st, err := s.repomanager.Stores(s.db).GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	st.MyRole = role
	return st, nil
}

func (s *StoreService) Update(ctx context.Context, userID, storeID string, in StoreInput) (*models.Store, error) {
	role, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager)
	if err != nil {
		return nil, err
	}
	st, err := normalizeStore(in)
	if err != nil {
		return nil, err
	}
	st.ID = storeID

	out, err := s.repomanager.Stores(s.db).Update(ctx, st)
	if err != nil {
		return nil, err
	}
	out.MyRole = role
	return out, nil
}

// Delete removes the store; roles, roster and transactions go with it.
func (s *StoreService) Delete(ctx context.Context, userID, storeID string) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner); err != nil {
		return err
	}
	return s.repomanager.Stores(s.db).Delete(ctx, storeID)
}

func (s *StoreService) ListRoles(ctx context.Context, userID, storeID string) ([]*models.StoreRole, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return nil, err
	}
	return s.repomanager.StoreRoles(s.db).List(ctx, storeID)
}

// GrantRole gives targetID a non-owner role on the store. Owner only.
func (s *StoreService) GrantRole(ctx context.Context, userID, storeID, targetID, role string) error {
	if !isStaffRole(role) {
		return common.Validationf("role must be one of manager, cashier, viewer")
	}
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner); err != nil {
		return err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, targetID); err != nil {
		return err
	}

	current, err := s.repomanager.StoreRoles(s.db).GetRole(ctx, storeID, targetID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if current == models.StoreRoleOwner {
		return common.Validationf("the owner role cannot be changed")
	}
	return s.repomanager.StoreRoles(s.db).Grant(ctx, storeID, targetID, role)
}

// RevokeRole removes targetID's role. Owner only; the owner cannot be removed.
func (s *StoreService) RevokeRole(ctx context.Context, userID, storeID, targetID string) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner); err != nil {
		return err
	}
	current, err := s.repomanager.StoreRoles(s.db).GetRole(ctx, storeID, targetID)
	if err != nil {
		return err
	}
	if current == models.StoreRoleOwner {
		return common.Validationf("the owner role cannot be revoked")
	}
	return s.repomanager.StoreRoles(s.db).Revoke(ctx, storeID, targetID)
}

func (s *StoreService) ListStaff(ctx context.Context, userID, storeID string) ([]*models.DashboardUser, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return nil, err
	}
	return s.repomanager.DashboardUsers(s.db).List(ctx, storeID)
}

func (s *StoreService) CreateStaff(ctx context.Context, userID, storeID string, in StaffInput) (*models.DashboardUser, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return nil, err
	}
	u, err := normalizeStaff(in)
	if err != nil {
		return nil, err
	}
	u.StoreID = storeID
	u.IsActive = true
	return s.repomanager.DashboardUsers(s.db).Create(ctx, u)
}

func (s *StoreService) UpdateStaff(ctx context.Context, userID, storeID, staffID string, in StaffInput) (*models.DashboardUser, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return nil, err
	}
	u, err := normalizeStaff(in)
	if err != nil {
		return nil, err
	}
	u.ID = staffID
	u.StoreID = storeID
	return s.repomanager.DashboardUsers(s.db).Update(ctx, u)
}

func (s *StoreService) SetStaffActive(ctx context.Context, userID, storeID, staffID string, active bool) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return err
	}
	return s.repomanager.DashboardUsers(s.db).SetActive(ctx, storeID, staffID, active)
}

// storeLocation resolves the store's timezone for date bucketing.
func storeLocation(st *models.Store) *time.Location {
	loc, err := time.LoadLocation(st.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeStore(in StoreInput) (*models.Store, error) {
	st := &models.Store{
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		Currency: strings.ToUpper(strings.TrimSpace(in.Currency)),
		Timezone: strings.TrimSpace(in.Timezone),
	}
	if st.Name == "" {
		return nil, common.Validationf("name is required")
	}
	if utf8.RuneCountInString(st.Name) > maxNameLength {
		return nil, common.Validationf("name must be at most %d characters", maxNameLength)
	}
	if st.Currency == "" {
		st.Currency = "USD"
	}
	if !isCurrencyCode(st.Currency) {
		return nil, common.Validationf("currency must be a three-letter code")
	}
	if st.Timezone == "" {
		st.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(st.Timezone); err != nil {
		return nil, common.Validationf("unknown timezone %q", st.Timezone)
	}
	return st, nil
}

func normalizeStaff(in StaffInput) (*models.DashboardUser, error) {
	u := &models.DashboardUser{
		Name:  strings.TrimSpace(in.Name),
		Email: common.NormalizeEmail(in.Email),
		Role:  in.Role,
	}
	if u.Name == "" {
		return nil, common.Validationf("name is required")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return nil, common.Validationf("email is invalid")
	}
	if !isStaffRole(u.Role) {
		return nil, common.Validationf("role must be one of manager, cashier, viewer")
	}
	return u, nil
}

func isStaffRole(role string) bool {
	switch role {
	case models.StoreRoleManager, models.StoreRoleCashier, models.StoreRoleViewer:
		return true
	}
	return false
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
