package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// compile-time check that *DB implements repository.DonorRepository
var _ repository.DonorRepository = (*DB)(nil)

// CreateDonor inserts a donor register entry. Assigns ID and CreatedAt
// in place.
func (db *DB) CreateDonor(ctx context.Context, donor *model.Donor) error {
	donor.ID = xid.New().String()
	donor.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO donors (id, donor_name, donor_type, contact_number, email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		donor.ID,
		donor.DonorName,
		donor.DonorType,
		donor.ContactNumber,
		donor.Email,
		donor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting donor (name=%s): %w", donor.DonorName, err)
	}

	return nil
}

// GetDonorByID retrieves a donor register entry.
// Returns apperror.ErrNotFound if no donor exists with that ID.
func (db *DB) GetDonorByID(ctx context.Context, id string) (*model.Donor, error) {
	var d model.Donor
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, donor_name, donor_type, contact_number, email, created_at
		 FROM donors WHERE id = ?`, id,
	).Scan(&d.ID, &d.DonorName, &d.DonorType, &d.ContactNumber, &d.Email, &d.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("donor", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying donor %s: %w", id, err)
	}

	return &d, nil
}

// ListDonors returns donor register entries, newest first.
func (db *DB) ListDonors(ctx context.Context, opts repository.ListOptions) ([]model.Donor, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, donor_name, donor_type, contact_number, email, created_at
		 FROM donors ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying donors: %w", err)
	}
	defer rows.Close()

	var donors []model.Donor
	for rows.Next() {
		var d model.Donor
		if err := rows.Scan(&d.ID, &d.DonorName, &d.DonorType, &d.ContactNumber, &d.Email, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning donor row: %w", err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating donor rows: %w", err)
	}

	return donors, nil
}

// UpdateDonor rewrites a donor register entry.
// Returns apperror.ErrNotFound if no donor exists with that ID.
func (db *DB) UpdateDonor(ctx context.Context, donor *model.Donor) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE donors SET donor_name = ?, donor_type = ?, contact_number = ?, email = ?
		 WHERE id = ?`,
		donor.DonorName,
		donor.DonorType,
		donor.ContactNumber,
		donor.Email,
		donor.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating donor %s: %w", donor.ID, err)
	}

	return requireRowAffected(res, "donor", donor.ID)
}

// DeleteDonor removes a donor register entry.
// Returns apperror.ErrNotFound if no donor exists with that ID.
func (db *DB) DeleteDonor(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM donors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting donor %s: %w", id, err)
	}

	return requireRowAffected(res, "donor", id)
}

// requireRowAffected converts a zero-row UPDATE or DELETE into ErrNotFound.
func requireRowAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
