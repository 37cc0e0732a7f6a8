package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/model"
)

// accountsFile is the shape of the YAML seed file:
//
//	accounts:
//	  - email: admin@example.org
//	    fullName: Site Admin
//	    password: change-me
//	    role: admin
type accountsFile struct {
	Accounts []struct {
		Email    string `yaml:"email"`
		FullName string `yaml:"fullName"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"accounts"`
}

// SeedFromFile creates the accounts listed in a YAML file, typically the
// initial admin. Accounts that already exist are left untouched so the
// seed is safe to run on every startup.
func (db *DB) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sqlite: reading seed file: %w", err)
	}

	var af accountsFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return fmt.Errorf("sqlite: parsing seed file: %w", err)
	}

	for _, a := range af.Accounts {
		if a.Email == "" || a.Password == "" {
			continue
		}
		role, ok := model.ParseRole(a.Role)
		if !ok {
			return fmt.Errorf("sqlite: seed account %s has unknown role %q", a.Email, a.Role)
		}

		if _, err := db.GetProfileByEmail(ctx, a.Email); err == nil {
			continue
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("sqlite: hashing seed password for %s: %w", a.Email, err)
		}

		profile := &model.Profile{
			Email:        a.Email,
			FullName:     a.FullName,
			PasswordHash: string(hash),
		}
		if err := db.CreateProfile(ctx, profile); err != nil {
			return err
		}
		if err := db.AssignRole(ctx, profile.ID, role); err != nil {
			return err
		}
	}

	return nil
}
