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

// compile-time check that *DB implements repository.CertificateRepository
var _ repository.CertificateRepository = (*DB)(nil)

// CreateCertificate inserts one certificate row. Assigns ID and IssuedAt
// in place. Certificates are append-only; rows are never updated.
func (db *DB) CreateCertificate(ctx context.Context, cert *model.Certificate) error {
	cert.ID = xid.New().String()
	cert.IssuedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO certificates (id, donor_id, donor_name, issued_by, certificate_type, issued_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cert.ID,
		cert.DonorID,
		cert.DonorName,
		nullableString(cert.IssuedBy),
		string(cert.Type),
		cert.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting certificate (donorID=%s): %w", cert.DonorID, err)
	}

	return nil
}

// GetCertificateByID retrieves one certificate.
// Returns apperror.ErrNotFound if no certificate exists with that ID.
func (db *DB) GetCertificateByID(ctx context.Context, id string) (*model.Certificate, error) {
	var (
		c        model.Certificate
		certType string
		issuedBy sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, donor_id, donor_name, issued_by, certificate_type, issued_at
		 FROM certificates WHERE id = ?`, id,
	).Scan(&c.ID, &c.DonorID, &c.DonorName, &issuedBy, &certType, &c.IssuedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("certificate", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying certificate %s: %w", id, err)
	}

	c.IssuedBy = issuedBy.String
	c.Type = model.CertificateType(certType)
	return &c, nil
}

// ListCertificatesByDonor returns a donor's certificates, newest first.
func (db *DB) ListCertificatesByDonor(ctx context.Context, donorID string) ([]model.Certificate, error) {
	return db.queryCertificates(ctx,
		`SELECT id, donor_id, donor_name, issued_by, certificate_type, issued_at
		 FROM certificates WHERE donor_id = ? ORDER BY issued_at DESC`,
		donorID,
	)
}

// ListCertificates returns all certificates, newest first.
func (db *DB) ListCertificates(ctx context.Context, opts repository.ListOptions) ([]model.Certificate, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	return db.queryCertificates(ctx,
		`SELECT id, donor_id, donor_name, issued_by, certificate_type, issued_at
		 FROM certificates ORDER BY issued_at DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
}

// CountCertificates returns the total number of certificates issued.
func (db *DB) CountCertificates(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting certificates: %w", err)
	}
	return count, nil
}

func (db *DB) queryCertificates(ctx context.Context, query string, args ...any) ([]model.Certificate, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying certificates: %w", err)
	}
	defer rows.Close()

	var certs []model.Certificate
	for rows.Next() {
		var (
			c        model.Certificate
			certType string
			issuedBy sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.DonorID, &c.DonorName, &issuedBy, &certType, &c.IssuedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning certificate row: %w", err)
		}
		c.IssuedBy = issuedBy.String
		c.Type = model.CertificateType(certType)
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating certificate rows: %w", err)
	}

	return certs, nil
}

// nullableString maps the empty string to NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
