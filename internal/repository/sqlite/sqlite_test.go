package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// newTestDB returns a DB backed by an in-memory SQLite database that is
// closed when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestProfile creates a profile and fails the test on error.
func createTestProfile(t *testing.T, db *DB, email string) *model.Profile {
	t.Helper()
	p := &model.Profile{
		Email:        email,
		FullName:     "Test Person",
		PasswordHash: "$2a$04$notarealhash",
	}
	if err := db.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

func TestCreateProfile(t *testing.T) {
	db := newTestDB(t)

	p := createTestProfile(t, db, "donor@example.com")
	if p.ID == "" {
		t.Error("CreateProfile() did not set ID")
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreateProfile() did not set CreatedAt")
	}
}

func TestCreateProfile_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestProfile(t, db, "dup@example.com")

	err := db.CreateProfile(context.Background(), &model.Profile{
		Email:        "dup@example.com",
		PasswordHash: "$2a$04$other",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateProfile() with duplicate email error = %v, want ErrConflict", err)
	}
}

func TestGetProfileByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetProfileByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfileByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHubProfile_PreservesCreatedAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.Profile{GitHubID: 777, Email: "gh@example.com", FullName: "GH User"}
	if err := db.UpsertGitHubProfile(ctx, first); err != nil {
		t.Fatalf("first upsert error = %v", err)
	}

	second := &model.Profile{GitHubID: 777, Email: "gh-new@example.com", FullName: "GH Renamed"}
	if err := db.UpsertGitHubProfile(ctx, second); err != nil {
		t.Fatalf("second upsert error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second upsert changed internal ID: %s != %s", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("second upsert moved CreatedAt: %v != %v", second.CreatedAt, first.CreatedAt)
	}

	got, err := db.GetProfileByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetProfileByID() error = %v", err)
	}
	if got.Email != "gh-new@example.com" {
		t.Errorf("upsert did not refresh email: got %q", got.Email)
	}
}

func TestRolesFor_SingleAssignment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestProfile(t, db, "roles@example.com")
	if err := db.AssignRole(ctx, p.ID, model.RoleDonor); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	roles, err := db.RolesFor(ctx, p.ID)
	if err != nil {
		t.Fatalf("RolesFor() error = %v", err)
	}
	if len(roles) != 1 || roles[0] != "donor" {
		t.Errorf("RolesFor() = %v, want [donor]", roles)
	}
}

func TestAssignRole_ReplacesExisting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestProfile(t, db, "promote@example.com")
	if err := db.AssignRole(ctx, p.ID, model.RoleDonor); err != nil {
		t.Fatalf("AssignRole(donor) error = %v", err)
	}
	if err := db.AssignRole(ctx, p.ID, model.RoleAdmin); err != nil {
		t.Fatalf("AssignRole(admin) error = %v", err)
	}

	roles, err := db.RolesFor(ctx, p.ID)
	if err != nil {
		t.Fatalf("RolesFor() error = %v", err)
	}
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("RolesFor() after reassignment = %v, want [admin]", roles)
	}
}

func TestRolesFor_ReturnsDuplicateRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestProfile(t, db, "dirty@example.com")

	// Insert two rows directly, bypassing AssignRole, to simulate a
	// corrupted table. RolesFor must surface both rows.
	for _, role := range []string{"donor", "admin"} {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, p.ID, role,
		); err != nil {
			t.Fatalf("raw insert: %v", err)
		}
	}

	roles, err := db.RolesFor(ctx, p.ID)
	if err != nil {
		t.Fatalf("RolesFor() error = %v", err)
	}
	if len(roles) != 2 {
		t.Errorf("RolesFor() returned %d rows, want 2 (no LIMIT masking)", len(roles))
	}
}

func TestCertificates_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	donor := createTestProfile(t, db, "cert-donor@example.com")
	admin := createTestProfile(t, db, "cert-admin@example.com")

	annual := &model.Certificate{
		DonorID:   donor.ID,
		DonorName: "Test Person",
		IssuedBy:  admin.ID,
		Type:      model.CertificateAnnual,
	}
	if err := db.CreateCertificate(ctx, annual); err != nil {
		t.Fatalf("CreateCertificate(annual) error = %v", err)
	}
	if annual.ID == "" || annual.IssuedAt.IsZero() {
		t.Error("CreateCertificate() did not set ID/IssuedAt")
	}

	self := &model.Certificate{
		DonorID:   donor.ID,
		DonorName: "Test Person",
		Type:      model.CertificateSelfGenerated,
	}
	if err := db.CreateCertificate(ctx, self); err != nil {
		t.Fatalf("CreateCertificate(self) error = %v", err)
	}

	certs, err := db.ListCertificatesByDonor(ctx, donor.ID)
	if err != nil {
		t.Fatalf("ListCertificatesByDonor() error = %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("ListCertificatesByDonor() returned %d certs, want 2", len(certs))
	}

	got, err := db.GetCertificateByID(ctx, self.ID)
	if err != nil {
		t.Fatalf("GetCertificateByID() error = %v", err)
	}
	if got.IssuedBy != "" {
		t.Errorf("self-generated certificate has IssuedBy = %q, want empty", got.IssuedBy)
	}
	if got.Type != model.CertificateSelfGenerated {
		t.Errorf("certificate type = %q, want %q", got.Type, model.CertificateSelfGenerated)
	}

	count, err := db.CountCertificates(ctx)
	if err != nil {
		t.Fatalf("CountCertificates() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountCertificates() = %d, want 2", count)
	}
}

func TestDonations_TotalsAndRecent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	donor := createTestProfile(t, db, "giver@example.com")

	for i, qty := range []int{10, 25} {
		d := &model.Donation{
			DonorID:      donor.ID,
			DonorName:    "Test Person",
			FoodItem:     "Rice",
			Quantity:     qty,
			DonationDate: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateDonation(ctx, d); err != nil {
			t.Fatalf("CreateDonation() error = %v", err)
		}
	}

	total, err := db.TotalDonatedQuantity(ctx)
	if err != nil {
		t.Fatalf("TotalDonatedQuantity() error = %v", err)
	}
	if total != 35 {
		t.Errorf("TotalDonatedQuantity() = %d, want 35", total)
	}

	count, err := db.CountDonations(ctx)
	if err != nil {
		t.Fatalf("CountDonations() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountDonations() = %d, want 2", count)
	}

	recent, err := db.ListRecentDonations(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentDonations() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("ListRecentDonations(1) returned %d rows", len(recent))
	}
	if recent[0].Quantity != 25 {
		t.Errorf("ListRecentDonations() first row quantity = %d, want 25 (newest first)", recent[0].Quantity)
	}
}

func TestTotalDonatedQuantity_EmptyTable(t *testing.T) {
	db := newTestDB(t)

	total, err := db.TotalDonatedQuantity(context.Background())
	if err != nil {
		t.Fatalf("TotalDonatedQuantity() error = %v", err)
	}
	if total != 0 {
		t.Errorf("TotalDonatedQuantity() on empty table = %d, want 0", total)
	}
}

func TestDonorRegister_CRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := &model.Donor{DonorName: "Acme Bakery", DonorType: "business", Email: "acme@example.com"}
	if err := db.CreateDonor(ctx, d); err != nil {
		t.Fatalf("CreateDonor() error = %v", err)
	}

	d.ContactNumber = "555-0100"
	if err := db.UpdateDonor(ctx, d); err != nil {
		t.Fatalf("UpdateDonor() error = %v", err)
	}

	got, err := db.GetDonorByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDonorByID() error = %v", err)
	}
	if got.ContactNumber != "555-0100" {
		t.Errorf("UpdateDonor() did not persist contact number, got %q", got.ContactNumber)
	}

	if err := db.DeleteDonor(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDonor() error = %v", err)
	}
	if _, err := db.GetDonorByID(ctx, d.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetDonorByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUpdateDonor_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateDonor(context.Background(), &model.Donor{ID: "missing", DonorName: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateDonor() on missing row error = %v, want ErrNotFound", err)
	}
}

func TestDistributionRecords_Join(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	item := &model.FoodItem{ItemName: "Canned Beans", Quantity: 100, Unit: "cans"}
	if err := db.CreateFoodItem(ctx, item); err != nil {
		t.Fatalf("CreateFoodItem() error = %v", err)
	}

	event := &model.DistributionEvent{
		EventDate:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Location:    "Community Hall",
		OrganizedBy: "Volunteers",
	}
	if err := db.CreateDistributionEvent(ctx, event); err != nil {
		t.Fatalf("CreateDistributionEvent() error = %v", err)
	}

	detail := &model.DistributionDetail{
		EventID:             event.ID,
		FoodID:              item.ID,
		QuantityDistributed: 40,
	}
	if err := db.CreateDistributionDetail(ctx, detail); err != nil {
		t.Fatalf("CreateDistributionDetail() error = %v", err)
	}

	records, err := db.ListDistributionRecords(ctx, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListDistributionRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListDistributionRecords() returned %d rows, want 1", len(records))
	}
	r := records[0]
	if r.ItemName != "Canned Beans" {
		t.Errorf("record ItemName = %q, want %q", r.ItemName, "Canned Beans")
	}
	if r.EventLocation != "Community Hall" {
		t.Errorf("record EventLocation = %q, want %q", r.EventLocation, "Community Hall")
	}
	if r.QuantityDistributed != 40 {
		t.Errorf("record QuantityDistributed = %d, want 40", r.QuantityDistributed)
	}
}

func TestDeleteDistributionEvent_CascadesDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	item := &model.FoodItem{ItemName: "Bread", Quantity: 30, Unit: "loaves"}
	if err := db.CreateFoodItem(ctx, item); err != nil {
		t.Fatalf("CreateFoodItem() error = %v", err)
	}
	event := &model.DistributionEvent{EventDate: time.Now(), Location: "Depot"}
	if err := db.CreateDistributionEvent(ctx, event); err != nil {
		t.Fatalf("CreateDistributionEvent() error = %v", err)
	}
	detail := &model.DistributionDetail{EventID: event.ID, FoodID: item.ID, QuantityDistributed: 5}
	if err := db.CreateDistributionDetail(ctx, detail); err != nil {
		t.Fatalf("CreateDistributionDetail() error = %v", err)
	}

	if err := db.DeleteDistributionEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteDistributionEvent() error = %v", err)
	}
	if _, err := db.GetDistributionDetailByID(ctx, detail.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("detail survived event delete, error = %v, want ErrNotFound", err)
	}
}

func TestSeedFromFile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seed := filepath.Join(t.TempDir(), "accounts.yaml")
	content := `accounts:
  - email: admin@example.org
    fullName: Site Admin
    password: seed-password
    role: admin
  - email: donor@example.org
    password: seed-password
    role: donor
`
	if err := os.WriteFile(seed, []byte(content), 0o600); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}

	if err := db.SeedFromFile(ctx, seed); err != nil {
		t.Fatalf("SeedFromFile() error = %v", err)
	}

	admin, err := db.GetProfileByEmail(ctx, "admin@example.org")
	if err != nil {
		t.Fatalf("GetProfileByEmail(admin) error = %v", err)
	}
	roles, err := db.RolesFor(ctx, admin.ID)
	if err != nil {
		t.Fatalf("RolesFor() error = %v", err)
	}
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("seeded admin roles = %v, want [admin]", roles)
	}

	// Running the seed again must not duplicate accounts or fail.
	if err := db.SeedFromFile(ctx, seed); err != nil {
		t.Fatalf("SeedFromFile() second run error = %v", err)
	}
	again, err := db.GetProfileByEmail(ctx, "admin@example.org")
	if err != nil {
		t.Fatalf("GetProfileByEmail(admin) after reseed error = %v", err)
	}
	if again.ID != admin.ID {
		t.Errorf("reseed replaced the admin account: %s != %s", again.ID, admin.ID)
	}
}
