// Package models contains persistent data structures shared by the server
// repositories and services.
package models

import "time"

// User is an account record. PasswordHash is a bcrypt digest and is never
// serialized to API clients. ResetToken/ResetTokenExpires are either both nil
// or both set; GoogleID is set only for accounts linked to Google sign-in.
type User struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string
	ResetToken        *string
	ResetTokenExpires *time.Time
	GoogleID          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
