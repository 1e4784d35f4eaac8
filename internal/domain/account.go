// Package domain contains the core types for accounts, sessions, and signals.
package domain

import "time"

// Account is a registered user of the service. Accounts are created by
// registration and never mutated afterwards; deletion is an admin-side
// operation outside this server.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
