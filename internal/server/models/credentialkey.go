package models

import "time"

const (
	KeyIssued   = "issued"
	KeyRedeemed = "redeemed"
	KeyRevoked  = "revoked"
)

// CredentialKey is an opaque key issued after payment (or by an admin) and
// redeemed once to activate a subscription (tokens table).
type CredentialKey struct {
	ID             string     `json:"id"`
	Key            string     `json:"key"`
	PlanID         string     `json:"plan_id"`
	DurationDays   int        `json:"duration_days"`
	Status         string     `json:"status"`
	UserID         *string    `json:"user_id,omitempty"`
	PaymentID      *string    `json:"payment_id,omitempty"`
	SubscriptionID *string    `json:"subscription_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}

type CredentialKeyFilter struct {
	Status string
	Limit  int
	Offset int
}
