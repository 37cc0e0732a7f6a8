package model

import "time"

// DistributionEvent is a scheduled (or past) food distribution.
type DistributionEvent struct {
	ID          string    `json:"id"`
	EventDate   time.Time `json:"eventDate"`
	Location    string    `json:"location"`
	OrganizedBy string    `json:"organizedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DistributionDetail records how much of one food item was handed out at
// one event.
type DistributionDetail struct {
	ID                  string    `json:"id"`
	EventID             string    `json:"eventId"`
	FoodID              string    `json:"foodId"`
	QuantityDistributed int       `json:"quantityDistributed"`
	CreatedAt           time.Time `json:"createdAt"`
}

// DistributionRecord is a detail row joined with its event and item names,
// the shape the distribution-details listing renders.
type DistributionRecord struct {
	DistributionDetail
	EventDate     time.Time `json:"eventDate"`
	EventLocation string    `json:"eventLocation"`
	ItemName      string    `json:"itemName"`
}
