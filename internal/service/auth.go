package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/tahsin/project-nourish/internal/access"
	"github.com/tahsin/project-nourish/internal/apperror"
	"github.com/tahsin/project-nourish/internal/auth"
	"github.com/tahsin/project-nourish/internal/model"
	"github.com/tahsin/project-nourish/internal/repository"
)

const MinPasswordLength = 8

// AuthService handles registration, login and the GitHub sign-in upsert.
// Every successful auth-state change is published on the broker so
// subscribers (the access resolver, the audit logger) re-resolve.
type AuthService struct {
	profiles  repository.ProfileRepository
	roles     *RoleService
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	broker    *access.Broker
	logger    *slog.Logger
}

func NewAuthService(
	profiles repository.ProfileRepository,
	roles *RoleService,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	broker *access.Broker,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		profiles:  profiles,
		roles:     roles,
		passwords: passwords,
		tokens:    tokens,
		broker:    broker,
		logger:    logger,
	}
}

// Register creates an email/password account with the donor role and
// returns the profile with a session token.
func (s *AuthService) Register(ctx context.Context, email, fullName, password string) (*model.Profile, string, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", apperror.ValidationFailed("password", err.Error())
	}

	profile := &model.Profile{
		Email:        email,
		FullName:     sanitize(fullName),
		PasswordHash: hash,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return nil, "", err
	}

	// New accounts are donors. Admins are provisioned through the seed
	// file or promoted by an existing admin.
	if err := s.roles.Assign(ctx, profile.ID, model.RoleDonor); err != nil {
		return nil, "", fmt.Errorf("service: assigning donor role to %s: %w", profile.ID, err)
	}

	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("service: issuing session token: %w", err)
	}

	s.logger.Info("account registered", slog.String("profileID", profile.ID))
	s.broker.Publish(access.Event{Kind: access.EventLogin})
	return profile, token, nil
}

// Login verifies an email/password pair and returns the profile with a
// session token. The error message never reveals which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Profile, string, error) {
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, "", apperror.Unauthenticated("invalid email or password")
	}
	if profile.PasswordHash == "" {
		// GitHub-only account; there is no password to check.
		return nil, "", apperror.Unauthenticated("invalid email or password")
	}
	if err := s.passwords.Verify(profile.PasswordHash, password); err != nil {
		return nil, "", apperror.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("service: issuing session token: %w", err)
	}

	s.logger.Info("login", slog.String("profileID", profile.ID))
	s.broker.Publish(access.Event{Kind: access.EventLogin})
	return profile, token, nil
}

// LoginGitHub upserts a profile for an exchanged GitHub user and returns
// it with a session token. First-time sign-ins get the donor role;
// return visits keep whatever role they already hold.
func (s *AuthService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.Profile, string, error) {
	email := ghUser.Email
	if email == "" {
		// GitHub hides the email when the user opts out; synthesise the
		// noreply form so the UNIQUE constraint still holds.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}
	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}

	profile := &model.Profile{
		GitHubID: ghUser.ID,
		Email:    email,
		FullName: sanitize(name),
	}
	if err := s.profiles.UpsertGitHubProfile(ctx, profile); err != nil {
		return nil, "", err
	}

	role, err := s.roles.RoleFor(ctx, &model.Identity{Subject: profile.ID})
	if err != nil {
		return nil, "", err
	}
	if role == model.RoleNone {
		if err := s.roles.Assign(ctx, profile.ID, model.RoleDonor); err != nil {
			return nil, "", fmt.Errorf("service: assigning donor role to %s: %w", profile.ID, err)
		}
	}

	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, "", fmt.Errorf("service: issuing session token: %w", err)
	}

	s.logger.Info("github login",
		slog.String("profileID", profile.ID),
		slog.Int64("githubID", ghUser.ID),
	)
	s.broker.Publish(access.Event{Kind: access.EventLogin})
	return profile, token, nil
}

// Logout publishes the logout event. Clearing the session cookie is the
// handler's job.
func (s *AuthService) Logout() {
	s.broker.Publish(access.Event{Kind: access.EventLogout})
}

// Profile returns the profile for an authenticated subject.
func (s *AuthService) Profile(ctx context.Context, subjectID string) (*model.Profile, error) {
	return s.profiles.GetProfileByID(ctx, subjectID)
}
