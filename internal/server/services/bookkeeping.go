package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
)

const (
	defaultTransactionPage = 50
	maxTransactionPage     = 500
	maxDescriptionLength   = 1000
)

var (
	defaultSaleCategories    = []string{"food", "beverages", "clothing", "electronics", "services", "other"}
	defaultExpenseCategories = []string{"rent", "utilities", "salaries", "supplies", "inventory", "marketing", "other"}

	csvHeader = []string{"id", "occurred_at", "type", "category", "description", "quantity", "amount", "cost", "payment_method"}
)

// TransactionInput carries the editable fields of a transaction. A zero
// OccurredAt means now on create and the stored time on update.
type TransactionInput struct {
	Type          string
	Category      string
	Description   string
	AmountCents   int64
	CostCents     int64
	Quantity      int
	PaymentMethod string
	OccurredAt    time.Time
}

type TransactionPage struct {
	Items  []*models.Transaction `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// Category is one entry of the merged default and custom category list.
// ID is set for custom categories only.
type Category struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Custom bool   `json:"custom"`
}

// BookkeepingService records sales and expenses of a store.
type BookkeepingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBookkeepingService(db *sql.DB, m repomanager.RepositoryManager) *BookkeepingService {
	return &BookkeepingService{db: db, repomanager: m}
}

var writeRoles = []string{models.StoreRoleOwner, models.StoreRoleManager, models.StoreRoleCashier}

func (s *BookkeepingService) List(ctx context.Context, userID string, f models.TransactionFilter) (*TransactionPage, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, f.StoreID, userID); err != nil {
		return nil, err
	}
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	f.Limit, f.Offset = pageBounds(f.Limit, f.Offset, defaultTransactionPage, maxTransactionPage)

	repo := s.repomanager.Transactions(s.db)
	items, err := repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Transaction{}
	}
	return &TransactionPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *BookkeepingService) Get(ctx context.Context, userID, storeID, id string) (*models.Transaction, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Transactions(s.db).GetByID(ctx, storeID, id)
}

func (s *BookkeepingService) Create(ctx context.Context, userID, storeID string, in TransactionInput) (*models.Transaction, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, writeRoles...); err != nil {
		return nil, err
	}
	t, err := s.validateTransaction(ctx, storeID, in)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = &userID
	return s.repomanager.Transactions(s.db).Create(ctx, t)
}

func (s *BookkeepingService) Update(ctx context.Context, userID, storeID, id string, in TransactionInput) (*models.Transaction, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, writeRoles...); err != nil {
		return nil, err
	}
	repo := s.repomanager.Transactions(s.db)
	existing, err := repo.GetByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = existing.OccurredAt
	}
	t, err := s.validateTransaction(ctx, storeID, in)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return repo.Update(ctx, t)
}

func (s *BookkeepingService) Delete(ctx context.Context, userID, storeID, id string) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, writeRoles...); err != nil {
		return err
	}
	return s.repomanager.Transactions(s.db).Delete(ctx, storeID, id)
}

// ExportCSV writes every transaction matching f (Limit/Offset ignored) to w.
func (s *BookkeepingService) ExportCSV(ctx context.Context, userID string, f models.TransactionFilter, w io.Writer) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, f.StoreID, userID); err != nil {
		return err
	}
	if err := validateFilter(f); err != nil {
		return err
	}
	f.Limit, f.Offset = 0, 0

	rows, err := s.repomanager.Transactions(s.db).List(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range rows {
		rec := []string{
			t.ID,
			t.OccurredAt.UTC().Format(time.RFC3339),
			t.Type,
			t.Category,
			t.Description,
			strconv.Itoa(t.Quantity),
			formatCents(t.AmountCents),
			formatCents(t.CostCents),
			t.PaymentMethod,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Categories lists defaults and the store's custom categories, sorted by
// type and name. An empty txType returns both types.
func (s *BookkeepingService) Categories(ctx context.Context, userID, storeID, txType string) ([]Category, error) {
	if txType != "" && !isTransactionType(txType) {
		return nil, common.Validationf("type must be sale or expense")
	}
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID); err != nil {
		return nil, err
	}

	custom, err := s.repomanager.Categories(s.db).List(ctx, storeID, txType)
	if err != nil {
		return nil, err
	}

	var out []Category
	for _, typ := range []string{models.TransactionExpense, models.TransactionSale} {
		if txType != "" && txType != typ {
			continue
		}
		for _, name := range defaultCategories(typ) {
			out = append(out, Category{Name: name, Type: typ})
		}
	}
	for _, c := range custom {
		out = append(out, Category{ID: c.ID, Name: c.Name, Type: c.Type, Custom: true})
	}

	slices.SortFunc(out, func(a, b Category) int {
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *BookkeepingService) CreateCategory(ctx context.Context, userID, storeID, name, txType string) (*models.CustomCategory, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return nil, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, common.Validationf("name must be at most %d characters", maxNameLength)
	}
	if !isTransactionType(txType) {
		return nil, common.Validationf("type must be sale or expense")
	}
	if slices.Contains(defaultCategories(txType), name) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrorAlreadyExists)
	}
	return s.repomanager.Categories(s.db).Create(ctx, &models.CustomCategory{StoreID: storeID, Name: name, Type: txType})
}

func (s *BookkeepingService) DeleteCategory(ctx context.Context, userID, storeID, id string) error {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID, models.StoreRoleOwner, models.StoreRoleManager); err != nil {
		return err
	}
	return s.repomanager.Categories(s.db).Delete(ctx, storeID, id)
}

func (s *BookkeepingService) validateTransaction(ctx context.Context, storeID string, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		StoreID:       storeID,
		Type:          in.Type,
		Category:      strings.ToLower(strings.TrimSpace(in.Category)),
		Description:   strings.TrimSpace(in.Description),
		AmountCents:   in.AmountCents,
		CostCents:     in.CostCents,
		Quantity:      in.Quantity,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		OccurredAt:    in.OccurredAt,
	}

	switch {
	case !isTransactionType(t.Type):
		return nil, common.Validationf("type must be sale or expense")
	case t.AmountCents <= 0:
		return nil, common.Validationf("amount must be positive")
	case t.CostCents < 0:
		return nil, common.Validationf("cost must not be negative")
	case t.Quantity < 1:
		return nil, common.Validationf("quantity must be at least 1")
	case t.Category == "":
		return nil, common.Validationf("category is required")
	case utf8.RuneCountInString(t.Description) > maxDescriptionLength:
		return nil, common.Validationf("description must be at most %d characters", maxDescriptionLength)
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = timeNow().UTC()
	}

	if !slices.Contains(defaultCategories(t.Type), t.Category) {
		ok, err := s.repomanager.Categories(s.db).Exists(ctx, storeID, t.Type, t.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.Validationf("unknown %s category %q", t.Type, t.Category)
		}
	}
	return t, nil
}

func validateFilter(f models.TransactionFilter) error {
	if f.Type != "" && !isTransactionType(f.Type) {
		return common.Validationf("type must be sale or expense")
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return common.Validationf("to must not be before from")
	}
	return nil
}

func defaultCategories(txType string) []string {
	switch txType {
	case models.TransactionSale:
		return defaultSaleCategories
	case models.TransactionExpense:
		return defaultExpenseCategories
	}
	return nil
}

func isTransactionType(s string) bool {
	return s == models.TransactionSale || s == models.TransactionExpense
}

// formatCents renders an amount in minor units as a decimal, e.g. 1205 -> "12.05".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
