// Package models defines the records SecureDrop persists and the values its
// services hand back to callers.
package models

// UserRecord is the persisted form of an Identity, keyed by email in the
// users namespace.
type UserRecord struct {
	FullName     string `json:"full_name"`
	PasswordHash string `json:"password_hash"`
}

// Identity is a registered user.
type Identity struct {
	Email        string
	FullName     string
	PasswordHash string
}

// Registration carries the input of a sign-up. Password and Confirm are
// wiped by the caller once registration returns.
type Registration struct {
	Email    string
	FullName string
	Password []byte
	Confirm  []byte
}
