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

// compile-time checks for the inventory repositories
var (
	_ repository.FoodItemRepository = (*DB)(nil)
	_ repository.StorageRepository  = (*DB)(nil)
)

// CreateFoodItem inserts an inventory item. Assigns ID in place and
// defaults DonatedDate to now when unset.
func (db *DB) CreateFoodItem(ctx context.Context, item *model.FoodItem) error {
	item.ID = xid.New().String()
	if item.DonatedDate.IsZero() {
		item.DonatedDate = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO food_items (id, item_name, donor_id, quantity, unit, expiry_date, donated_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.ItemName,
		nullableString(item.DonorID),
		item.Quantity,
		item.Unit,
		item.ExpiryDate,
		item.DonatedDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting food item (name=%s): %w", item.ItemName, err)
	}

	return nil
}

// GetFoodItemByID retrieves one inventory item.
// Returns apperror.ErrNotFound if no item exists with that ID.
func (db *DB) GetFoodItemByID(ctx context.Context, id string) (*model.FoodItem, error) {
	var (
		item    model.FoodItem
		donorID sql.NullString
		expiry  sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, item_name, donor_id, quantity, unit, expiry_date, donated_date
		 FROM food_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.ItemName, &donorID, &item.Quantity, &item.Unit, &expiry, &item.DonatedDate)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("food item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying food item %s: %w", id, err)
	}

	item.DonorID = donorID.String
	if expiry.Valid {
		t := expiry.Time
		item.ExpiryDate = &t
	}
	return &item, nil
}

// ListFoodItems returns inventory items, most recently donated first.
func (db *DB) ListFoodItems(ctx context.Context, opts repository.ListOptions) ([]model.FoodItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, item_name, donor_id, quantity, unit, expiry_date, donated_date
		 FROM food_items ORDER BY donated_date DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying food items: %w", err)
	}
	defer rows.Close()

	var items []model.FoodItem
	for rows.Next() {
		var (
			item    model.FoodItem
			donorID sql.NullString
			expiry  sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.ItemName, &donorID, &item.Quantity, &item.Unit, &expiry, &item.DonatedDate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning food item row: %w", err)
		}
		item.DonorID = donorID.String
		if expiry.Valid {
			t := expiry.Time
			item.ExpiryDate = &t
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating food item rows: %w", err)
	}

	return items, nil
}

// UpdateFoodItem rewrites an inventory item.
// Returns apperror.ErrNotFound if no item exists with that ID.
func (db *DB) UpdateFoodItem(ctx context.Context, item *model.FoodItem) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE food_items SET item_name = ?, donor_id = ?, quantity = ?, unit = ?, expiry_date = ?
		 WHERE id = ?`,
		item.ItemName,
		nullableString(item.DonorID),
		item.Quantity,
		item.Unit,
		item.ExpiryDate,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating food item %s: %w", item.ID, err)
	}

	return requireRowAffected(res, "food item", item.ID)
}

// DeleteFoodItem removes an inventory item.
// Returns apperror.ErrNotFound if no item exists with that ID.
func (db *DB) DeleteFoodItem(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting food item %s: %w", id, err)
	}

	return requireRowAffected(res, "food item", id)
}

// CreateStorageFacility inserts a storage facility. Assigns ID and
// CreatedAt in place.
func (db *DB) CreateStorageFacility(ctx context.Context, facility *model.StorageFacility) error {
	facility.ID = xid.New().String()
	facility.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO storage_facilities (id, location, capacity, current_stock, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		facility.ID,
		facility.Location,
		facility.Capacity,
		facility.CurrentStock,
		facility.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting storage facility (location=%s): %w", facility.Location, err)
	}

	return nil
}

// GetStorageFacilityByID retrieves one storage facility.
// Returns apperror.ErrNotFound if no facility exists with that ID.
func (db *DB) GetStorageFacilityByID(ctx context.Context, id string) (*model.StorageFacility, error) {
	var f model.StorageFacility
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, location, capacity, current_stock, created_at
		 FROM storage_facilities WHERE id = ?`, id,
	).Scan(&f.ID, &f.Location, &f.Capacity, &f.CurrentStock, &f.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("storage facility", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying storage facility %s: %w", id, err)
	}

	return &f, nil
}

// ListStorageFacilities returns storage facilities, oldest first.
func (db *DB) ListStorageFacilities(ctx context.Context, opts repository.ListOptions) ([]model.StorageFacility, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, location, capacity, current_stock, created_at
		 FROM storage_facilities ORDER BY created_at ASC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying storage facilities: %w", err)
	}
	defer rows.Close()

	var facilities []model.StorageFacility
	for rows.Next() {
		var f model.StorageFacility
		if err := rows.Scan(&f.ID, &f.Location, &f.Capacity, &f.CurrentStock, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning storage facility row: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating storage facility rows: %w", err)
	}

	return facilities, nil
}

// UpdateStorageFacility rewrites a storage facility.
// Returns apperror.ErrNotFound if no facility exists with that ID.
func (db *DB) UpdateStorageFacility(ctx context.Context, facility *model.StorageFacility) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE storage_facilities SET location = ?, capacity = ?, current_stock = ?
		 WHERE id = ?`,
		facility.Location,
		facility.Capacity,
		facility.CurrentStock,
		facility.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating storage facility %s: %w", facility.ID, err)
	}

	return requireRowAffected(res, "storage facility", facility.ID)
}

// DeleteStorageFacility removes a storage facility.
// Returns apperror.ErrNotFound if no facility exists with that ID.
func (db *DB) DeleteStorageFacility(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM storage_facilities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting storage facility %s: %w", id, err)
	}

	return requireRowAffected(res, "storage facility", id)
}
