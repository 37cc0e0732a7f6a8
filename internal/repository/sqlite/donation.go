package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// compile-time check that *DB implements repository.DonationRepository
var _ repository.DonationRepository = (*DB)(nil)

// CreateDonation inserts one donation row. Assigns ID in place and
// defaults DonationDate to now when unset.
func (db *DB) CreateDonation(ctx context.Context, donation *model.Donation) error {
	donation.ID = xid.New().String()
	if donation.DonationDate.IsZero() {
		donation.DonationDate = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO donations (id, donor_id, donor_name, contact_phone, contact_email, food_item, quantity, expiry_date, donation_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donation.ID,
		donation.DonorID,
		donation.DonorName,
		donation.ContactPhone,
		donation.ContactEmail,
		donation.FoodItem,
		donation.Quantity,
		donation.ExpiryDate,
		donation.DonationDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting donation (donorID=%s): %w", donation.DonorID, err)
	}

	return nil
}

// ListDonationsByDonor returns a donor's donations, newest first.
func (db *DB) ListDonationsByDonor(ctx context.Context, donorID string) ([]model.Donation, error) {
	return db.queryDonations(ctx,
		`SELECT id, donor_id, donor_name, contact_phone, contact_email, food_item, quantity, expiry_date, donation_date
		 FROM donations WHERE donor_id = ? ORDER BY donation_date DESC`,
		donorID,
	)
}

// ListRecentDonations returns the latest donations across all donors.
func (db *DB) ListRecentDonations(ctx context.Context, limit int) ([]model.Donation, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryDonations(ctx,
		`SELECT id, donor_id, donor_name, contact_phone, contact_email, food_item, quantity, expiry_date, donation_date
		 FROM donations ORDER BY donation_date DESC LIMIT ?`,
		limit,
	)
}

// CountDonations returns the all-time number of donations.
func (db *DB) CountDonations(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM donations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting donations: %w", err)
	}
	return count, nil
}

// TotalDonatedQuantity returns the sum of all donated quantities.
func (db *DB) TotalDonatedQuantity(ctx context.Context) (int, error) {
	var total sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT SUM(quantity) FROM donations`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing donation quantities: %w", err)
	}
	return int(total.Int64), nil
}

func (db *DB) queryDonations(ctx context.Context, query string, args ...any) ([]model.Donation, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying donations: %w", err)
	}
	defer rows.Close()

	var donations []model.Donation
	for rows.Next() {
		var (
			d      model.Donation
			expiry sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.DonorID, &d.DonorName, &d.ContactPhone, &d.ContactEmail, &d.FoodItem, &d.Quantity, &expiry, &d.DonationDate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning donation row: %w", err)
		}
		if expiry.Valid {
			t := expiry.Time
			d.ExpiryDate = &t
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating donation rows: %w", err)
	}

	return donations, nil
}
