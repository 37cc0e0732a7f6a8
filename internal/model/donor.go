package model

import "time"

// Donor is an entry in the admin-managed donor register. This is separate
// from Profile: the register tracks organisations and walk-in donors that
// may never have an account.
type Donor struct {
	ID            string    `json:"id"`
	DonorName     string    `json:"donorName"`
	DonorType     string    `json:"donorType"` // e.g. "individual", "business"
	ContactNumber string    `json:"contactNumber,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
