package models

import "time"

// Report is the analytics view of one store over [From, To). All money
// fields are in minor currency units.
type Report struct {
	StoreID     string          `json:"store_id"`
	Currency    string          `json:"currency"`
	Timezone    string          `json:"timezone"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Summary     ReportSummary   `json:"summary"`
	Categories  []CategoryTotal `json:"categories"`
	Hours       []HourBucket    `json:"hours"`
	BusiestHour int             `json:"busiest_hour"`
	Daily       []DailyTotal    `json:"daily"`
}

type ReportSummary struct {
	TotalSalesCents    int64   `json:"total_sales_cents"`
	TotalExpensesCents int64   `json:"total_expenses_cents"`
	TotalCostCents     int64   `json:"total_cost_cents"`
	GrossProfitCents   int64   `json:"gross_profit_cents"`
	NetProfitCents     int64   `json:"net_profit_cents"`
	ProfitMarginPct    float64 `json:"profit_margin_pct"`
	SaleCount          int     `json:"sale_count"`
	ExpenseCount       int     `json:"expense_count"`
	AverageSaleCents   int64   `json:"average_sale_cents"`
	ItemsSold          int     `json:"items_sold"`
}

// CategoryTotal aggregates one category of one type. SharePct is relative
// to the total of that type.
type CategoryTotal struct {
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	TotalCents int64   `json:"total_cents"`
	Count      int     `json:"count"`
	SharePct   float64 `json:"share_pct"`
}

// HourBucket holds the sales that happened in one local hour of the day.
type HourBucket struct {
	Hour       int   `json:"hour"`
	SaleCount  int   `json:"sale_count"`
	SalesCents int64 `json:"sales_cents"`
}

type DailyTotal struct {
	Date          string `json:"date"`
	SalesCents    int64  `json:"sales_cents"`
	ExpensesCents int64  `json:"expenses_cents"`
}
