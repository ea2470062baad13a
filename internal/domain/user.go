// Package domain holds the Inkpost entities shared by the store, services and API.
package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User is an account that owns posts, tags, sections, comments and replies.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var lowerDomain = cases.Lower(language.Und)

// NormalizeEmail trims the address and lowercases its domain part.
// The local part keeps its case: "Ann.Lee@Example.COM" becomes "Ann.Lee@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + lowerDomain.String(email[at+1:])
}
