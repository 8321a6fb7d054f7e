package model

import "time"

// User represents an application user record as stored in the `users`
// table.  PasswordHash is tagged out of JSON so a User value can be
// returned to clients directly without leaking the credential.
//
// Fields:
//
//	ID           – UUID primary key.
//	Email        – unique, normalised (trimmed, lower-case) email address.
//	PasswordHash – bcrypt hash of the password; never serialized.
//	FullName     – optional display name.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string    `json:"id"`                 // users.id
	Email        string    `json:"email"`              // users.email
	PasswordHash string    `json:"-"`                  // users.password_hash
	FullName     string    `json:"fullName,omitempty"` // users.full_name (nullable)
	CreatedAt    time.Time `json:"createdAt"`          // users.created_at
}
