package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// Shared hand-written fakes for the service tests. Each fake holds its
// rows in a map and implements just enough behaviour for the contracts
// under test.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

// add inserts a profile directly, bypassing CreateProfile, so tests can
// control CreatedAt.
func (f *fakeProfileRepo) add(p *model.Profile) *model.Profile {
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	f.profiles[p.ID] = p
	return p
}

func (f *fakeProfileRepo) CreateProfile(_ context.Context, p *model.Profile) error {
	for _, existing := range f.profiles {
		if existing.Email == p.Email {
			return apperror.Conflict("email", p.Email)
		}
	}
	p.ID = xid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) GetProfileByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile", id)
	}
	return p, nil
}

func (f *fakeProfileRepo) GetProfileByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperror.NotFound("profile", email)
}

func (f *fakeProfileRepo) UpsertGitHubProfile(_ context.Context, p *model.Profile) error {
	for _, existing := range f.profiles {
		if existing.GitHubID == p.GitHubID {
			existing.Email = p.Email
			existing.FullName = p.FullName
			*p = *existing
			return nil
		}
	}
	p.ID = xid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) ListProfilesByRole(_ context.Context, _ model.Role) ([]model.Profile, error) {
	var out []model.Profile
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

type fakeRoleRepo struct {
	rows  map[string][]string
	err   error
	calls int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{rows: make(map[string][]string)}
}

func (f *fakeRoleRepo) RolesFor(_ context.Context, subjectID string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[subjectID], nil
}

func (f *fakeRoleRepo) AssignRole(_ context.Context, subjectID string, role model.Role) error {
	f.rows[subjectID] = []string{string(role)}
	return nil
}

type fakeCertRepo struct {
	certs []model.Certificate
}

func (f *fakeCertRepo) CreateCertificate(_ context.Context, c *model.Certificate) error {
	c.ID = xid.New().String()
	c.IssuedAt = time.Now()
	f.certs = append(f.certs, *c)
	return nil
}

func (f *fakeCertRepo) GetCertificateByID(_ context.Context, id string) (*model.Certificate, error) {
	for i := range f.certs {
		if f.certs[i].ID == id {
			return &f.certs[i], nil
		}
	}
	return nil, apperror.NotFound("certificate", id)
}

func (f *fakeCertRepo) ListCertificatesByDonor(_ context.Context, donorID string) ([]model.Certificate, error) {
	var out []model.Certificate
	for _, c := range f.certs {
		if c.DonorID == donorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCertRepo) ListCertificates(_ context.Context, _ repository.ListOptions) ([]model.Certificate, error) {
	return f.certs, nil
}

func (f *fakeCertRepo) CountCertificates(_ context.Context) (int, error) {
	return len(f.certs), nil
}

type fakeDonationRepo struct {
	donations []model.Donation
}

func (f *fakeDonationRepo) CreateDonation(_ context.Context, d *model.Donation) error {
	d.ID = xid.New().String()
	if d.DonationDate.IsZero() {
		d.DonationDate = time.Now()
	}
	f.donations = append(f.donations, *d)
	return nil
}

func (f *fakeDonationRepo) ListDonationsByDonor(_ context.Context, donorID string) ([]model.Donation, error) {
	var out []model.Donation
	for _, d := range f.donations {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDonationRepo) ListRecentDonations(_ context.Context, limit int) ([]model.Donation, error) {
	if limit > len(f.donations) {
		limit = len(f.donations)
	}
	return f.donations[:limit], nil
}

func (f *fakeDonationRepo) CountDonations(_ context.Context) (int, error) {
	return len(f.donations), nil
}

func (f *fakeDonationRepo) TotalDonatedQuantity(_ context.Context) (int, error) {
	total := 0
	for _, d := range f.donations {
		total += d.Quantity
	}
	return total, nil
}
