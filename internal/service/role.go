// Package service contains the business logic layer. Handlers parse HTTP
// and delegate here; services validate, enforce access rules, and talk to
// the repositories through their interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

// roleLookupTimeout bounds the store round trip. A hung lookup must not
// stall the request; the caller fails closed to RoleNone on timeout.
const roleLookupTimeout = 5 * time.Second

// RoleService resolves the role for an identity. It implements
// access.RoleSource.
type RoleService struct {
	repo   repository.RoleRepository
	logger *slog.Logger
}

func NewRoleService(repo repository.RoleRepository, logger *slog.Logger) *RoleService {
	return &RoleService{repo: repo, logger: logger}
}

// RoleFor maps an identity to its role.
//
// The contract with the user_roles table is one row per subject. The raw
// rows are inspected here rather than masked with LIMIT 1:
//
//   - no rows          -> RoleNone
//   - multiple rows    -> data-integrity fault; fail open to RoleNone so
//     a corrupt table can never widen access
//   - unrecognised row -> data-integrity fault; RoleUnknown, which no
//     route accepts
//
// A nil identity short-circuits without touching the store.
func (s *RoleService) RoleFor(ctx context.Context, identity *model.Identity) (model.Role, error) {
	if identity == nil {
		return model.RoleNone, nil
	}

	ctx, cancel := context.WithTimeout(ctx, roleLookupTimeout)
	defer cancel()

	rows, err := s.repo.RolesFor(ctx, identity.Subject)
	if err != nil {
		// Timeouts and transport failures are classified here so callers
		// see one error family; the guard fails closed on any of them.
		return model.RoleNone, apperror.Unavailable(
			fmt.Sprintf("role lookup for %s", identity.Subject), err)
	}

	switch len(rows) {
	case 0:
		return model.RoleNone, nil
	case 1:
		role, ok := model.ParseRole(rows[0])
		if !ok {
			s.logger.Error("unrecognised role value in user_roles",
				slog.String("subject", identity.Subject),
				slog.String("role", rows[0]),
			)
			return model.RoleUnknown, nil
		}
		return role, nil
	default:
		s.logger.Error("multiple role rows for one subject",
			slog.String("subject", identity.Subject),
			slog.Int("rows", len(rows)),
		)
		return model.RoleNone, nil
	}
}

// Assign grants a role to a subject, replacing any previous assignment.
func (s *RoleService) Assign(ctx context.Context, subjectID string, role model.Role) error {
	if role != model.RoleAdmin && role != model.RoleDonor {
		return fmt.Errorf("service: refusing to assign role %q", role)
	}
	return s.repo.AssignRole(ctx, subjectID, role)
}
