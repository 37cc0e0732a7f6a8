package model

import "time"

// Donation is a contribution recorded by a donor from their dashboard.
// Contact fields are free text entered per donation, not copied from the
// profile — donors sometimes record donations on behalf of a business.
type Donation struct {
	ID           string     `json:"id"`
	DonorID      string     `json:"donorId"`
	DonorName    string     `json:"donorName"`
	ContactPhone string     `json:"contactPhone,omitempty"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	FoodItem     string     `json:"foodItem"`
	Quantity     int        `json:"quantity"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	DonationDate time.Time  `json:"donationDate"`
}
