package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// CreateProfile inserts a new profile. Assigns ID and timestamps in place.
// Returns apperror.ErrConflict when the email is already registered.
func (db *DB) CreateProfile(ctx context.Context, profile *model.Profile) error {
	now := time.Now()
	profile.ID = xid.New().String()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.PasswordHash,
		nullableGitHubID(profile.GitHubID),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", profile.Email)
		}
		return fmt.Errorf("sqlite: inserting profile (email=%s): %w", profile.Email, err)
	}

	return nil
}

// GetProfileByID retrieves a profile by its internal ID.
// Returns apperror.ErrNotFound if no profile exists with that ID.
func (db *DB) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	return db.getProfile(ctx, `WHERE id = ?`, id)
}

// GetProfileByEmail retrieves a profile by email address.
// Returns apperror.ErrNotFound if no profile exists with that email.
func (db *DB) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return db.getProfile(ctx, `WHERE email = ?`, email)
}

func (db *DB) getProfile(ctx context.Context, where string, arg any) (*model.Profile, error) {
	var (
		p        model.Profile
		githubID sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, github_id, created_at, updated_at
		 FROM profiles `+where, arg,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &githubID, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("profile", fmt.Sprint(arg))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying profile: %w", err)
	}

	p.GitHubID = githubID.Int64
	return &p, nil
}

// UpsertGitHubProfile inserts or refreshes a profile keyed by GitHub ID.
//
// The lookup-then-branch shape (instead of INSERT OR REPLACE) keeps the
// existing internal ID and created_at on return visits. created_at must
// never move forward: donor tenure is computed from it.
func (db *DB) UpsertGitHubProfile(ctx context.Context, profile *model.Profile) error {
	var existingID string
	var createdAt time.Time
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, created_at FROM profiles WHERE github_id = ?`, profile.GitHubID,
	).Scan(&existingID, &createdAt)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up profile by github_id %d: %w", profile.GitHubID, err)
	}

	if existingID != "" {
		profile.ID = existingID
		profile.CreatedAt = createdAt
		profile.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE profiles SET email = ?, full_name = ?, updated_at = ?
			 WHERE id = ?`,
			profile.Email,
			profile.FullName,
			profile.UpdatedAt,
			profile.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating profile %s: %w", profile.ID, err)
		}
		return nil
	}

	now := time.Now()
	profile.ID = xid.New().String()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, '', ?, ?, ?)`,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.GitHubID,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting profile (githubID=%d): %w", profile.GitHubID, err)
	}

	return nil
}

// ListProfilesByRole returns profiles holding the given role, oldest first, which
// is the order the admin donor roster displays (longest tenure on top).
func (db *DB) ListProfilesByRole(ctx context.Context, role model.Role) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.email, p.full_name, p.password_hash, p.github_id, p.created_at, p.updated_at
		 FROM profiles p
		 JOIN user_roles r ON r.user_id = p.id
		 WHERE r.role = ?
		 ORDER BY p.created_at ASC`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying profiles by role %s: %w", role, err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var (
			p        model.Profile
			githubID sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &githubID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		p.GitHubID = githubID.Int64
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profile rows: %w", err)
	}

	return profiles, nil
}

// nullableGitHubID maps the zero value to NULL so the partial unique
// index on github_id ignores password-only accounts.
func nullableGitHubID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite doesn't export a typed error for this, so
// the message is matched.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
