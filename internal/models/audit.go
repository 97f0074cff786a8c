package models

import "time"

// Auth event kinds recorded in the audit log.
const (
	EventSignup  = "signup"
	EventLogin   = "login"
	EventRefresh = "refresh"
)

// AuthEvent is one signup, login or refresh attempt.
type AuthEvent struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Kind       string    `json:"kind"`
	Succeeded  bool      `json:"succeeded"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
