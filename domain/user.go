package domain

import (
	"strings"
	"time"
)

// User represents an authenticated identity in the platform.
type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Avatar       string            `json:"avatar,omitempty"`
	Role         string            `json:"role,omitempty"`
	Status       string            `json:"status,omitempty"`
	PasswordHash string            `json:"-"`
	GoogleSub    string            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
