package models

import "time"

const (
	StoreRoleOwner   = "owner"
	StoreRoleManager = "manager"
	StoreRoleCashier = "cashier"
	StoreRoleViewer  = "viewer"
)

// Store is a tenant-owned business location used to scope transactions and
// analytics queries.
type Store struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// MyRole is the caller's role, filled in by listings scoped to a user.
	MyRole string `json:"my_role,omitempty"`
}

// StoreRole grants a profile access to a store.
type StoreRole struct {
	StoreID   string    `json:"store_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardUser is an entry of a store's staff roster.
type DashboardUser struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
