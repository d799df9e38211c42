package models

import (
	"time"
)

type User struct {
	ID                string
	Email             string
	PasswordHash      string // never serialized to responses
	Name              string
	ProfileImage      string // storage key of the uploaded profile image
	Role              string // "user", "admin"
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PasswordChangedAt *time.Time // last password change, used for token invalidation
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
