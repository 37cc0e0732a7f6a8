package sqlite

import (
	"context"
	"fmt"

	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// compile-time check that *DB implements repository.RoleRepository
var _ repository.RoleRepository = (*DB)(nil)

// RolesFor returns every raw role string assigned to the subject, in
// insertion order. No LIMIT: the caller enforces the single-assignment
// contract and must be able to see duplicates to report them.
func (db *DB) RolesFor(ctx context.Context, subjectID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY rowid`, subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying roles for %s: %w", subjectID, err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("sqlite: scanning role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating role rows: %w", err)
	}

	return roles, nil
}

// AssignRole records a role for a subject. Any existing assignment is
// replaced so the table keeps at most one row per subject.
func (db *DB) AssignRole(ctx context.Context, subjectID string, role model.Role) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning role assignment: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ?`, subjectID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing roles for %s: %w", subjectID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`,
		subjectID, string(role),
	); err != nil {
		return fmt.Errorf("sqlite: assigning role %s to %s: %w", role, subjectID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing role assignment: %w", err)
	}

	return nil
}
