package models

import "time"

// User is the identity record held by the account directory. Email is
// unique and stored lowercase. RefreshToken is the single mutable slot
// holding the currently valid refresh token, nil when logged out.
// PasswordHash and RefreshToken never leave the service boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
