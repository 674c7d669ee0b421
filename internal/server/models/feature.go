package models

import (
	"encoding/json"
	"time"
)

const (
	PhotoPending    = "pending"
	PhotoProcessing = "processing"
	PhotoCompleted  = "completed"
	PhotoFailed     = "failed"
)

// PhotoJob tracks one catalog-enhancer background removal. The images
// themselves live in object storage under SourceKey and ResultKey.
type PhotoJob struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	StoreID     *string    `json:"store_id,omitempty"`
	Status      string     `json:"status"`
	SourceKey   string     `json:"-"`
	ResultKey   string     `json:"-"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// GeneratedLabel is a saved label-generator draft.
type GeneratedLabel struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	StoreID   *string         `json:"store_id,omitempty"`
	Name      string          `json:"name"`
	Template  string          `json:"template"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StoreID   *string   `json:"store_id,omitempty"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminLog struct {
	ID        string          `json:"id"`
	AdminID   string          `json:"admin_id"`
	Action    string          `json:"action"`
	TargetID  string          `json:"target_id"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// Stats is the admin dashboard overview.
type Stats struct {
	TotalUsers          int            `json:"total_users"`
	ActiveUsers         int            `json:"active_users"`
	ActiveSubscriptions map[string]int `json:"active_subscriptions"`
	Stores              int            `json:"stores"`
	Transactions        int            `json:"transactions"`
	Tokens              map[string]int `json:"tokens"`
	RevenueCents        int64          `json:"revenue_cents"`
}
