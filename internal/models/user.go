package models

import "time"

// User represents a clinic staff account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// PendingSignup is an unconfirmed signup held in the session store until its
// OTP is verified or consumed by a failed attempt.
type PendingSignup struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	OTP          string    `json:"otp"`
	IssuedAt     time.Time `json:"issuedAt"`
}
