package models

import "time"

const (
	TransactionSale    = "sale"
	TransactionExpense = "expense"
)

type Transaction struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amount_cents"`
	CostCents     int64     `json:"cost_cents"`
	Quantity      int       `json:"quantity"`
	PaymentMethod string    `json:"payment_method"`
	OccurredAt    time.Time `json:"occurred_at"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionFilter selects transactions of one store. Zero From/To leave
// that side of the range open; the range is [From, To).
type TransactionFilter struct {
	StoreID  string
	From     time.Time
	To       time.Time
	Type     string
	Category string
	Limit    int
	Offset   int
}

type CustomCategory struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
