package models

import "time"

// User represents a registered account. Passwords are stored as bcrypt
// hashes and never serialized to API responses.
type User struct {
	ID           string    `json:"id" badgerhold:"key"`
	Username     string    `json:"username" badgerhold:"unique"`
	Email        string    `json:"email" badgerhold:"unique"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
