// Package repository defines the persistence interfaces. The sqlite
// subpackage implements them; services depend only on these interfaces.
package repository

import (
	"context"

	"github.com/tahsin/project-nourish/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ProfileRepository persists account profiles.
type ProfileRepository interface {
	// CreateProfile inserts a new profile. The implementation assigns ID
	// and timestamps. Returns apperror.ErrConflict when the email is taken.
	CreateProfile(ctx context.Context, profile *model.Profile) error

	// GetProfileByID returns the profile with the given id, or ErrNotFound.
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)

	// GetProfileByEmail returns the profile with the given email, or ErrNotFound.
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)

	// UpsertGitHubProfile inserts or refreshes a profile keyed by GitHub ID.
	// On return the profile carries its canonical ID and timestamps.
	UpsertGitHubProfile(ctx context.Context, profile *model.Profile) error

	// ListProfilesByRole returns profiles holding the given role, oldest
	// first, which is the shape the admin donor roster renders.
	ListProfilesByRole(ctx context.Context, role model.Role) ([]model.Profile, error)
}

// RoleRepository reads and writes role assignments.
type RoleRepository interface {
	// RolesFor returns every raw role string assigned to the subject.
	// The single-row contract (at most one assignment per subject) is
	// enforced by the caller so duplicates can be reported as a
	// data-integrity fault rather than masked by a LIMIT 1.
	RolesFor(ctx context.Context, subjectID string) ([]string, error)

	// AssignRole records a role for a subject, replacing any existing row.
	AssignRole(ctx context.Context, subjectID string, role model.Role) error
}

// CertificateRepository persists appreciation certificates. Certificates
// are append-only; there are no update or delete methods by design.
type CertificateRepository interface {
	// CreateCertificate inserts one certificate row. The implementation
	// assigns ID and IssuedAt.
	CreateCertificate(ctx context.Context, cert *model.Certificate) error

	// GetCertificateByID returns one certificate, or ErrNotFound.
	GetCertificateByID(ctx context.Context, id string) (*model.Certificate, error)

	// ListCertificatesByDonor returns a donor's certificates, newest first.
	ListCertificatesByDonor(ctx context.Context, donorID string) ([]model.Certificate, error)

	// ListCertificates returns all certificates, newest first.
	ListCertificates(ctx context.Context, opts ListOptions) ([]model.Certificate, error)

	// CountCertificates returns the total number of certificates issued.
	CountCertificates(ctx context.Context) (int, error)
}

// DonationRepository persists donations recorded from the donor dashboard.
type DonationRepository interface {
	CreateDonation(ctx context.Context, donation *model.Donation) error

	// ListDonationsByDonor returns a donor's donations, newest first.
	ListDonationsByDonor(ctx context.Context, donorID string) ([]model.Donation, error)

	// ListRecentDonations returns the latest donations across all donors.
	ListRecentDonations(ctx context.Context, limit int) ([]model.Donation, error)

	// CountDonations returns the all-time number of donations.
	CountDonations(ctx context.Context) (int, error)

	// TotalDonatedQuantity returns the sum of all donated quantities.
	TotalDonatedQuantity(ctx context.Context) (int, error)
}

// DonorRepository manages the admin-facing donor register.
type DonorRepository interface {
	CreateDonor(ctx context.Context, donor *model.Donor) error
	GetDonorByID(ctx context.Context, id string) (*model.Donor, error)
	ListDonors(ctx context.Context, opts ListOptions) ([]model.Donor, error)
	UpdateDonor(ctx context.Context, donor *model.Donor) error
	DeleteDonor(ctx context.Context, id string) error
}

// FoodItemRepository manages donated inventory items.
type FoodItemRepository interface {
	CreateFoodItem(ctx context.Context, item *model.FoodItem) error
	GetFoodItemByID(ctx context.Context, id string) (*model.FoodItem, error)
	ListFoodItems(ctx context.Context, opts ListOptions) ([]model.FoodItem, error)
	UpdateFoodItem(ctx context.Context, item *model.FoodItem) error
	DeleteFoodItem(ctx context.Context, id string) error
}

// StorageRepository manages storage facilities.
type StorageRepository interface {
	CreateStorageFacility(ctx context.Context, facility *model.StorageFacility) error
	GetStorageFacilityByID(ctx context.Context, id string) (*model.StorageFacility, error)
	ListStorageFacilities(ctx context.Context, opts ListOptions) ([]model.StorageFacility, error)
	UpdateStorageFacility(ctx context.Context, facility *model.StorageFacility) error
	DeleteStorageFacility(ctx context.Context, id string) error
}

// DistributionEventRepository manages distribution events.
type DistributionEventRepository interface {
	CreateDistributionEvent(ctx context.Context, event *model.DistributionEvent) error
	GetDistributionEventByID(ctx context.Context, id string) (*model.DistributionEvent, error)
	ListDistributionEvents(ctx context.Context, opts ListOptions) ([]model.DistributionEvent, error)
	UpdateDistributionEvent(ctx context.Context, event *model.DistributionEvent) error
	DeleteDistributionEvent(ctx context.Context, id string) error
}

// DistributionDetailRepository manages per-event distribution records.
type DistributionDetailRepository interface {
	CreateDistributionDetail(ctx context.Context, detail *model.DistributionDetail) error
	GetDistributionDetailByID(ctx context.Context, id string) (*model.DistributionDetail, error)

	// ListDistributionRecords returns details joined with their event
	// date/location and item name, newest first.
	ListDistributionRecords(ctx context.Context, opts ListOptions) ([]model.DistributionRecord, error)

	UpdateDistributionDetail(ctx context.Context, detail *model.DistributionDetail) error
	DeleteDistributionDetail(ctx context.Context, id string) error
}
