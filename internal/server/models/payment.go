package models

import "time"

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type PaymentRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PlanID          string    `json:"plan_id"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	Provider        string    `json:"provider"`
	ProviderRef     *string   `json:"provider_ref,omitempty"`
	Status          string    `json:"status"`
	CredentialKeyID *string   `json:"credential_key_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
