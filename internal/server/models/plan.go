package models

import "time"

const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Plan is a named tier bounding feature limits. A zero MaxAPICalls means
// the tier is not metered.
type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	MaxStores    int    `json:"max_stores"`
	MaxAPICalls  int    `json:"max_api_calls"`
	MaxPhotoJobs int    `json:"max_photo_jobs"`
	DurationDays int    `json:"duration_days"`
}

const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PlanID       string    `json:"plan_id"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	APICallsUsed int       `json:"api_calls_used"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubscriptionSummary joins the active subscription with its plan and
// current usage counters.
type SubscriptionSummary struct {
	Subscription *Subscription `json:"subscription"`
	Plan         *Plan         `json:"plan"`
	StoreCount   int           `json:"store_count"`
}
