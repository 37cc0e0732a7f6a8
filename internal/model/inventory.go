package model

import "time"

// FoodItem is a donated item tracked in inventory. DonorID references the
// donor register and may be empty for anonymous donations.
type FoodItem struct {
	ID          string     `json:"id"`
	ItemName    string     `json:"itemName"`
	DonorID     string     `json:"donorId,omitempty"`
	Quantity    int        `json:"quantity"`
	Unit        string     `json:"unit"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	DonatedDate time.Time  `json:"donatedDate"`
}

// StorageFacility is a physical storage location and its stock level.
type StorageFacility struct {
	ID           string    `json:"id"`
	Location     string    `json:"location"`
	Capacity     int       `json:"capacity"`
	CurrentStock int       `json:"currentStock"`
	CreatedAt    time.Time `json:"createdAt"`
}
