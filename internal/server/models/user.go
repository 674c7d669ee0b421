// Package models defines server-side data models persisted in the database.
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is a dashboard account (profiles table).
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileFilter narrows admin user listings.
type ProfileFilter struct {
	Search string
	Limit  int
	Offset int
}
