package services

import (
	"cmp"
	"context"
	"database/sql"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lirra/internal/timex"
)

const defaultReportRange = 30 * 24 * time.Hour

// AnalyticsService builds store reports from raw transaction rows. Nothing
// is cached; each report re-reads the range.
type AnalyticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAnalyticsService(db *sql.DB, m repomanager.RepositoryManager) *AnalyticsService {
	return &AnalyticsService{db: db, repomanager: m}
}

// Report aggregates transactions of the store in [from, to). Empty bounds
// default to the 30 days ending now; dates are read in the store timezone.
// Each report costs the caller one metered API call.
func (s *AnalyticsService) Report(ctx context.Context, userID, storeID, from, to string) (*models.Report, error) {
	if _, err := authorizeStore(ctx, s.repomanager, s.db, storeID, userID); err != nil {
		return nil, err
	}
	st, err := s.repomanager.Stores(s.db).GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	loc := storeLocation(st)

	start, end, err := reportRange(from, to, loc)
	if err != nil {
		return nil, err
	}

	if _, err := consumeAPICall(ctx, s.repomanager, s.db, userID); err != nil {
		return nil, err
	}

	rows, err := s.repomanager.Transactions(s.db).List(ctx, models.TransactionFilter{
		StoreID: storeID,
		From:    start,
		To:      end,
	})
	if err != nil {
		return nil, err
	}

	r := BuildReport(rows, loc)
	r.StoreID = st.ID
	r.Currency = st.Currency
	r.Timezone = loc.String()
	r.From = start
	r.To = end
	return r, nil
}

func reportRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	end := timeNow().In(loc)
	if to = strings.TrimSpace(to); to != "" {
		t, err := timex.ParseInstant(to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, common.Validationf("to: %v", err)
		}
		end = t
		if len(to) == len("2006-01-02") {
			// A bare date includes that whole day.
			end = t.AddDate(0, 0, 1)
		}
	}

	start := end.Add(-defaultReportRange)
	if from = strings.TrimSpace(from); from != "" {
		t, err := timex.ParseInstant(from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, common.Validationf("from: %v", err)
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, common.Validationf("to must not be before from")
	}
	return start, end, nil
}

// BuildReport aggregates rows. Hour buckets and daily totals use local
// time in loc.
func BuildReport(rows []*models.Transaction, loc *time.Location) *models.Report {
	r := &models.Report{
		Hours:       make([]models.HourBucket, 24),
		BusiestHour: -1,
		Categories:  []models.CategoryTotal{},
		Daily:       []models.DailyTotal{},
	}
	for h := range r.Hours {
		r.Hours[h].Hour = h
	}

	type catKey struct{ typ, name string }
	cats := map[catKey]*models.CategoryTotal{}
	days := map[string]*models.DailyTotal{}
	sum := &r.Summary

	for _, t := range rows {
		local := t.OccurredAt.In(loc)

		ck := catKey{t.Type, t.Category}
		c, ok := cats[ck]
		if !ok {
			c = &models.CategoryTotal{Type: t.Type, Category: t.Category}
			cats[ck] = c
		}
		c.TotalCents += t.AmountCents
		c.Count++

		date := timex.FormatDate(local)
		d, ok := days[date]
		if !ok {
			d = &models.DailyTotal{Date: date}
			days[date] = d
		}

		switch t.Type {
		case models.TransactionSale:
			sum.TotalSalesCents += t.AmountCents
			sum.TotalCostCents += t.CostCents
			sum.SaleCount++
			sum.ItemsSold += t.Quantity
			d.SalesCents += t.AmountCents

			b := &r.Hours[local.Hour()]
			b.SaleCount++
			b.SalesCents += t.AmountCents
		case models.TransactionExpense:
			sum.TotalExpensesCents += t.AmountCents
			sum.ExpenseCount++
			d.ExpensesCents += t.AmountCents
		}
	}

	sum.GrossProfitCents = sum.TotalSalesCents - sum.TotalCostCents
	sum.NetProfitCents = sum.GrossProfitCents - sum.TotalExpensesCents
	if sum.TotalSalesCents > 0 {
		sum.ProfitMarginPct = round2(float64(sum.NetProfitCents) / float64(sum.TotalSalesCents) * 100)
	}
	if sum.SaleCount > 0 {
		sum.AverageSaleCents = sum.TotalSalesCents / int64(sum.SaleCount)
	}

	for _, c := range cats {
		typeTotal := sum.TotalSalesCents
		if c.Type == models.TransactionExpense {
			typeTotal = sum.TotalExpensesCents
		}
		if typeTotal > 0 {
			c.SharePct = round2(float64(c.TotalCents) / float64(typeTotal) * 100)
		}
		r.Categories = append(r.Categories, *c)
	}
	slices.SortFunc(r.Categories, func(a, b models.CategoryTotal) int {
		if a.TotalCents != b.TotalCents {
			return cmp.Compare(b.TotalCents, a.TotalCents)
		}
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Type, b.Type)
	})

	best := 0
	for _, b := range r.Hours {
		if b.SaleCount > best {
			best = b.SaleCount
			r.BusiestHour = b.Hour
		}
	}

	for _, d := range days {
		r.Daily = append(r.Daily, *d)
	}
	slices.SortFunc(r.Daily, func(a, b models.DailyTotal) int { return strings.Compare(a.Date, b.Date) })

	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
