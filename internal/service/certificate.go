package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
	"github.com/tahsin/project-nourish/internal/tenure"
)

// CertificateService issues and lists appreciation certificates.
type CertificateService struct {
	certs    repository.CertificateRepository
	profiles repository.ProfileRepository
	logger   *slog.Logger

	// now is swappable in tests; everywhere else it is time.Now.
	now func() time.Time
}

func NewCertificateService(
	certs repository.CertificateRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *CertificateService {
	return &CertificateService{
		certs:    certs,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue creates one certificate for the target donor.
//
// Rules, checked in order:
//
//  1. acting must be authenticated (Unauthenticated otherwise)
//  2. certType must be a known type (Validation)
//  3. annual certificates: acting must hold the admin role (Forbidden)
//     and the target's tenure must be at least a year (NotEligible)
//  4. self-generated certificates: the target must be the acting donor
//     themselves (Forbidden); there is no tenure gate
//
// On success exactly one row is inserted, with the donor's display name
// snapshotted at issue time. Annual certificates record the issuing
// admin; self-generated ones carry no issuer.
func (s *CertificateService) Issue(
	ctx context.Context,
	acting *model.Identity,
	actingRole model.Role,
	targetDonorID string,
	certType model.CertificateType,
) (*model.Certificate, error) {
	if acting == nil {
		return nil, apperror.Unauthenticated("sign in to issue certificates")
	}
	if !certType.Valid() {
		return nil, apperror.ValidationFailed("certificateType",
			fmt.Sprintf("unknown certificate type %q", certType))
	}
	if targetDonorID == "" {
		return nil, apperror.ValidationFailed("donorId", "donorId is required")
	}

	target, err := s.profiles.GetProfileByID(ctx, targetDonorID)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		DonorID:   target.ID,
		DonorName: target.DisplayName(),
		Type:      certType,
	}

	switch certType {
	case model.CertificateAnnual:
		if actingRole != model.RoleAdmin {
			return nil, apperror.Forbidden("only admins issue annual certificates")
		}
		info := tenure.Calculate(target.CreatedAt, s.now())
		if !info.Eligible {
			return nil, apperror.NotEligible(fmt.Sprintf(
				"donor tenure is %s; a full year is required for an annual certificate",
				info.Display))
		}
		cert.IssuedBy = acting.Subject

	case model.CertificateSelfGenerated:
		if target.ID != acting.Subject {
			return nil, apperror.Forbidden("donors may only self-generate their own certificate")
		}
	}

	if err := s.certs.CreateCertificate(ctx, cert); err != nil {
		return nil, err
	}

	s.logger.Info("certificate issued",
		slog.String("certificateID", cert.ID),
		slog.String("donorID", cert.DonorID),
		slog.String("type", string(cert.Type)),
		slog.String("issuedBy", cert.IssuedBy),
	)
	return cert, nil
}

// Get returns one certificate. Donors may only fetch their own; admins
// may fetch any.
func (s *CertificateService) Get(ctx context.Context, acting *model.Identity, actingRole model.Role, id string) (*model.Certificate, error) {
	if acting == nil {
		return nil, apperror.Unauthenticated("sign in to view certificates")
	}

	cert, err := s.certs.GetCertificateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actingRole != model.RoleAdmin && cert.DonorID != acting.Subject {
		return nil, apperror.Forbidden("this certificate belongs to another donor")
	}
	return cert, nil
}

// ListForDonor returns a donor's own certificates, newest first.
func (s *CertificateService) ListForDonor(ctx context.Context, donorID string) ([]model.Certificate, error) {
	return s.certs.ListCertificatesByDonor(ctx, donorID)
}

// ListAll returns all certificates, newest first.
func (s *CertificateService) ListAll(ctx context.Context, opts repository.ListOptions) ([]model.Certificate, error) {
	return s.certs.ListCertificates(ctx, opts)
}
