package model

import "time"

// Identity is a connected client's profile. The session core treats its ID
// as a pre-authenticated opaque identifier.
type Identity struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool
	CreatedAt   time.Time
}

// Account extends an Identity with login credentials.
// Stored separately so the password hash never travels with session state.
type Account struct {
	PlayerID     PlayerID
	Username     string // immutable login name
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
