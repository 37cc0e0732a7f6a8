package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// DonationInput is the donor-supplied part of a donation record.
type DonationInput struct {
	ContactPhone string     `json:"contactPhone"`
	ContactEmail string     `json:"contactEmail"`
	FoodItem     string     `json:"foodItem"`
	Quantity     int        `json:"quantity"`
	ExpiryDate   *time.Time `json:"expiryDate"`
}

// DonationService records donations made from the donor dashboard.
type DonationService struct {
	donations repository.DonationRepository
	profiles  repository.ProfileRepository
	logger    *slog.Logger
}

func NewDonationService(
	donations repository.DonationRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *DonationService {
	return &DonationService{donations: donations, profiles: profiles, logger: logger}
}

// Record validates and stores one donation for the acting donor. The
// donor name is snapshotted from the profile, same as certificates.
func (s *DonationService) Record(ctx context.Context, acting *model.Identity, input DonationInput) (*model.Donation, error) {
	if acting == nil {
		return nil, apperror.Unauthenticated("sign in to record a donation")
	}
	if sanitize(input.FoodItem) == "" {
		return nil, apperror.ValidationFailed("foodItem", "food item is required")
	}
	if input.Quantity <= 0 {
		return nil, apperror.ValidationFailed("quantity", "quantity must be positive")
	}

	profile, err := s.profiles.GetProfileByID(ctx, acting.Subject)
	if err != nil {
		return nil, err
	}

	donation := &model.Donation{
		DonorID:      profile.ID,
		DonorName:    profile.DisplayName(),
		ContactPhone: sanitize(input.ContactPhone),
		ContactEmail: sanitize(input.ContactEmail),
		FoodItem:     sanitize(input.FoodItem),
		Quantity:     input.Quantity,
		ExpiryDate:   input.ExpiryDate,
	}
	if err := s.donations.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	s.logger.Info("donation recorded",
		slog.String("donationID", donation.ID),
		slog.String("donorID", donation.DonorID),
		slog.Int("quantity", donation.Quantity),
	)
	return donation, nil
}

// ListForDonor returns a donor's own donations, newest first.
func (s *DonationService) ListForDonor(ctx context.Context, donorID string) ([]model.Donation, error) {
	return s.donations.ListDonationsByDonor(ctx, donorID)
}
