package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
	"github.com/tahsin/project-nourish/internal/tenure"
)

// DonorSummary is one row of the admin donor roster.
type DonorSummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
	Tenure   string    `json:"tenure"`
	Eligible bool      `json:"eligible"`
}

// AdminDashboard is the admin landing-page payload.
type AdminDashboard struct {
	TotalDonors       int                 `json:"totalDonors"`
	TotalDonations    int                 `json:"totalDonations"`
	ItemsDonated      int                 `json:"itemsDonated"`
	TotalCertificates int                 `json:"totalCertificates"`
	Roster            []DonorSummary      `json:"roster"`
	RecentDonations   []model.Donation    `json:"recentDonations"`
	Certificates      []model.Certificate `json:"certificates"`
}

// DonorDashboard is the donor landing-page payload.
type DonorDashboard struct {
	Profile      *model.Profile      `json:"profile"`
	Tenure       tenure.Info         `json:"tenure"`
	Donations    []model.Donation    `json:"donations"`
	Certificates []model.Certificate `json:"certificates"`
}

// DashboardService assembles the two role home pages.
type DashboardService struct {
	profiles  repository.ProfileRepository
	donations repository.DonationRepository
	certs     repository.CertificateRepository
	logger    *slog.Logger

	now func() time.Time
}

func NewDashboardService(
	profiles repository.ProfileRepository,
	donations repository.DonationRepository,
	certs repository.CertificateRepository,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		profiles:  profiles,
		donations: donations,
		certs:     certs,
		logger:    logger,
		now:       time.Now,
	}
}

// Admin builds the admin dashboard: totals, the donor roster with tenure
// and eligibility, the latest donations and all certificates.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	donors, err := s.profiles.ListProfilesByRole(ctx, model.RoleDonor)
	if err != nil {
		return nil, fmt.Errorf("service: loading donor roster: %w", err)
	}

	now := s.now()
	roster := make([]DonorSummary, 0, len(donors))
	for i := range donors {
		d := &donors[i]
		info := tenure.Calculate(d.CreatedAt, now)
		roster = append(roster, DonorSummary{
			ID:       d.ID,
			Name:     d.DisplayName(),
			Email:    d.Email,
			JoinedAt: d.CreatedAt,
			Tenure:   info.Display,
			Eligible: info.Eligible,
		})
	}

	donationCount, err := s.donations.CountDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: counting donations: %w", err)
	}
	itemsDonated, err := s.donations.TotalDonatedQuantity(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: summing donations: %w", err)
	}
	certCount, err := s.certs.CountCertificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: counting certificates: %w", err)
	}
	recent, err := s.donations.ListRecentDonations(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("service: loading recent donations: %w", err)
	}
	certs, err := s.certs.ListCertificates(ctx, repository.ListOptions{Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("service: loading certificates: %w", err)
	}

	return &AdminDashboard{
		TotalDonors:       len(donors),
		TotalDonations:    donationCount,
		ItemsDonated:      itemsDonated,
		TotalCertificates: certCount,
		Roster:            roster,
		RecentDonations:   recent,
		Certificates:      certs,
	}, nil
}

// Donor builds a donor's own dashboard: profile, tenure, donations and
// certificates.
func (s *DashboardService) Donor(ctx context.Context, subjectID string) (*DonorDashboard, error) {
	profile, err := s.profiles.GetProfileByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	donations, err := s.donations.ListDonationsByDonor(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("service: loading donations for %s: %w", subjectID, err)
	}
	certs, err := s.certs.ListCertificatesByDonor(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("service: loading certificates for %s: %w", subjectID, err)
	}

	return &DonorDashboard{
		Profile:      profile,
		Tenure:       tenure.Calculate(profile.CreatedAt, s.now()),
		Donations:    donations,
		Certificates: certs,
	}, nil
}
