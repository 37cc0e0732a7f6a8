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

// compile-time checks for the distribution repositories
var (
	_ repository.DistributionEventRepository  = (*DB)(nil)
	_ repository.DistributionDetailRepository = (*DB)(nil)
)

// CreateDistributionEvent inserts a distribution event. Assigns ID and
// CreatedAt in place.
func (db *DB) CreateDistributionEvent(ctx context.Context, event *model.DistributionEvent) error {
	event.ID = xid.New().String()
	event.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO distribution_events (id, event_date, location, organized_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID,
		event.EventDate,
		event.Location,
		event.OrganizedBy,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting distribution event (location=%s): %w", event.Location, err)
	}

	return nil
}

// GetDistributionEventByID retrieves one distribution event.
// Returns apperror.ErrNotFound if no event exists with that ID.
func (db *DB) GetDistributionEventByID(ctx context.Context, id string) (*model.DistributionEvent, error) {
	var e model.DistributionEvent
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, event_date, location, organized_by, created_at
		 FROM distribution_events WHERE id = ?`, id,
	).Scan(&e.ID, &e.EventDate, &e.Location, &e.OrganizedBy, &e.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("distribution event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying distribution event %s: %w", id, err)
	}

	return &e, nil
}

// ListDistributionEvents returns distribution events, soonest event date
// last (most recent first).
func (db *DB) ListDistributionEvents(ctx context.Context, opts repository.ListOptions) ([]model.DistributionEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, event_date, location, organized_by, created_at
		 FROM distribution_events ORDER BY event_date DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying distribution events: %w", err)
	}
	defer rows.Close()

	var events []model.DistributionEvent
	for rows.Next() {
		var e model.DistributionEvent
		if err := rows.Scan(&e.ID, &e.EventDate, &e.Location, &e.OrganizedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning distribution event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating distribution event rows: %w", err)
	}

	return events, nil
}

// UpdateDistributionEvent rewrites a distribution event.
// Returns apperror.ErrNotFound if no event exists with that ID.
func (db *DB) UpdateDistributionEvent(ctx context.Context, event *model.DistributionEvent) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE distribution_events SET event_date = ?, location = ?, organized_by = ?
		 WHERE id = ?`,
		event.EventDate,
		event.Location,
		event.OrganizedBy,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating distribution event %s: %w", event.ID, err)
	}

	return requireRowAffected(res, "distribution event", event.ID)
}

// DeleteDistributionEvent removes a distribution event and its details.
// Returns apperror.ErrNotFound if no event exists with that ID.
func (db *DB) DeleteDistributionEvent(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning event delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM distribution_details WHERE event_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting details for event %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM distribution_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting distribution event %s: %w", id, err)
	}
	if err := requireRowAffected(res, "distribution event", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing event delete: %w", err)
	}

	return nil
}

// CreateDistributionDetail inserts a per-event distribution record.
// Assigns ID and CreatedAt in place. The referenced event and food item
// must exist (foreign keys are enforced).
func (db *DB) CreateDistributionDetail(ctx context.Context, detail *model.DistributionDetail) error {
	detail.ID = xid.New().String()
	detail.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO distribution_details (id, event_id, food_id, quantity_distributed, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		detail.ID,
		detail.EventID,
		detail.FoodID,
		detail.QuantityDistributed,
		detail.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting distribution detail (eventID=%s): %w", detail.EventID, err)
	}

	return nil
}

// GetDistributionDetailByID retrieves one distribution detail.
// Returns apperror.ErrNotFound if no detail exists with that ID.
func (db *DB) GetDistributionDetailByID(ctx context.Context, id string) (*model.DistributionDetail, error) {
	var d model.DistributionDetail
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, event_id, food_id, quantity_distributed, created_at
		 FROM distribution_details WHERE id = ?`, id,
	).Scan(&d.ID, &d.EventID, &d.FoodID, &d.QuantityDistributed, &d.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("distribution detail", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying distribution detail %s: %w", id, err)
	}

	return &d, nil
}

// ListDistributionRecords returns details joined with their event and
// item, newest event first.
func (db *DB) ListDistributionRecords(ctx context.Context, opts repository.ListOptions) ([]model.DistributionRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT d.id, d.event_id, d.food_id, d.quantity_distributed, d.created_at,
		        e.event_date, e.location, f.item_name
		 FROM distribution_details d
		 JOIN distribution_events e ON e.id = d.event_id
		 JOIN food_items f ON f.id = d.food_id
		 ORDER BY e.event_date DESC, d.created_at DESC
		 LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying distribution records: %w", err)
	}
	defer rows.Close()

	var records []model.DistributionRecord
	for rows.Next() {
		var r model.DistributionRecord
		if err := rows.Scan(&r.ID, &r.EventID, &r.FoodID, &r.QuantityDistributed, &r.CreatedAt,
			&r.EventDate, &r.EventLocation, &r.ItemName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning distribution record row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating distribution record rows: %w", err)
	}

	return records, nil
}

// UpdateDistributionDetail rewrites a distribution detail.
// Returns apperror.ErrNotFound if no detail exists with that ID.
func (db *DB) UpdateDistributionDetail(ctx context.Context, detail *model.DistributionDetail) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE distribution_details SET event_id = ?, food_id = ?, quantity_distributed = ?
		 WHERE id = ?`,
		detail.EventID,
		detail.FoodID,
		detail.QuantityDistributed,
		detail.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating distribution detail %s: %w", detail.ID, err)
	}

	return requireRowAffected(res, "distribution detail", detail.ID)
}

// DeleteDistributionDetail removes a distribution detail.
// Returns apperror.ErrNotFound if no detail exists with that ID.
func (db *DB) DeleteDistributionDetail(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM distribution_details WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting distribution detail %s: %w", id, err)
	}

	return requireRowAffected(res, "distribution detail", id)
}
