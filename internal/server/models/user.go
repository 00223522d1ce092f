package models

import "time"

// User is the identity record held by the credential store. ID is assigned
// by the store on creation. PasswordHash is the only form in which the
// password is ever kept.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
