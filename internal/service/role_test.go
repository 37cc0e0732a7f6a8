package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
)

func TestRoleFor_NilIdentityShortCircuits(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := NewRoleService(repo, testLogger())

	role, err := svc.RoleFor(context.Background(), nil)
	if err != nil {
		t.Fatalf("RoleFor(nil) error = %v", err)
	}
	if role != model.RoleNone {
		t.Errorf("RoleFor(nil) = %q, want RoleNone", role)
	}
	if repo.calls != 0 {
		t.Errorf("RoleFor(nil) hit the store %d times, want 0", repo.calls)
	}
}

func TestRoleFor_NoRows(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := NewRoleService(repo, testLogger())

	role, err := svc.RoleFor(context.Background(), &model.Identity{Subject: "u1"})
	if err != nil {
		t.Fatalf("RoleFor() error = %v", err)
	}
	if role != model.RoleNone {
		t.Errorf("RoleFor() with no rows = %q, want RoleNone", role)
	}
}

func TestRoleFor_SingleRow(t *testing.T) {
	tests := []struct {
		stored string
		want   model.Role
	}{
		{"admin", model.RoleAdmin},
		{"donor", model.RoleDonor},
		{"superuser", model.RoleUnknown},
		{"", model.RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			repo := newFakeRoleRepo()
			repo.rows["u1"] = []string{tt.stored}
			svc := NewRoleService(repo, testLogger())

			role, err := svc.RoleFor(context.Background(), &model.Identity{Subject: "u1"})
			if err != nil {
				t.Fatalf("RoleFor() error = %v", err)
			}
			if role != tt.want {
				t.Errorf("RoleFor() with stored %q = %q, want %q", tt.stored, role, tt.want)
			}
		})
	}
}

func TestRoleFor_MultipleRowsFailOpenToNone(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.rows["u1"] = []string{"admin", "donor"}
	svc := NewRoleService(repo, testLogger())

	role, err := svc.RoleFor(context.Background(), &model.Identity{Subject: "u1"})
	if err != nil {
		t.Fatalf("RoleFor() error = %v", err)
	}
	if role != model.RoleNone {
		t.Errorf("RoleFor() with duplicate rows = %q, want RoleNone (never the wider role)", role)
	}
}

func TestRoleFor_StoreError(t *testing.T) {
	repo := newFakeRoleRepo()
	repo.err = errors.New("connection refused")
	svc := NewRoleService(repo, testLogger())

	role, err := svc.RoleFor(context.Background(), &model.Identity{Subject: "u1"})
	if err == nil {
		t.Fatal("RoleFor() with failing store should return the error")
	}
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("RoleFor() store failure = %v, want ErrUnavailable", err)
	}
	if role != model.RoleNone {
		t.Errorf("RoleFor() on store failure = %q, want RoleNone", role)
	}
}

func TestAssign_RejectsNonConcreteRoles(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := NewRoleService(repo, testLogger())

	for _, role := range []model.Role{model.RoleNone, model.RoleUnknown, model.Role("root")} {
		if err := svc.Assign(context.Background(), "u1", role); err == nil {
			t.Errorf("Assign(%q) should be rejected", role)
		}
	}

	if err := svc.Assign(context.Background(), "u1", model.RoleDonor); err != nil {
		t.Errorf("Assign(donor) error = %v", err)
	}
}
