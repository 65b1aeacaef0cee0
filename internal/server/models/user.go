// Package models defines the persisted data structures used by the server.
package models

import "time"

// User is an account record keyed by username. PasswordHash holds a bcrypt
// hash; the plaintext password is never stored.
type User struct {
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}
