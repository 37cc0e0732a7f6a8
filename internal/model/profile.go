package model

import "time"

// Profile represents a registered account.
//
// Accounts are created either with email/password or through the GitHub
// OAuth provider, so PasswordHash and GitHubID are both optional — exactly
// one of them is normally set.
//
// CreatedAt is immutable once written: it is the sole input to the tenure
// calculation that gates annual certificates, so nothing in the application
// ever updates it.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"` // 0 when the account is password-only
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns the name to show on dashboards and certificates:
// the full name when present, otherwise the email address.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
