// Authentication business logic.
//
//	AuthHandler (HTTP) → AuthService (rules) → AdminRepository (DB)
//	                   ↘ TokenService (session tokens)
//	                   ↘ PasswordService (bcrypt)
//
// AuthService turns credentials into session tokens. It never sets cookies
// or reads requests; that is the handler's job.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/burakyalinat/portfolio/internal/apperror"
	"github.com/burakyalinat/portfolio/internal/auth"
	"github.com/burakyalinat/portfolio/internal/model"
	"github.com/burakyalinat/portfolio/internal/repository"
)

// githubPrincipalPrefix marks principals that signed in through GitHub, so
// "github:alice" can never be confused with an admin row named "alice".
const githubPrincipalPrefix = "github:"

// AuthService handles login and credential provisioning.
type AuthService struct {
	admins       repository.AdminRepository
	tokens       *auth.TokenService
	passwords    *auth.PasswordService
	githubLogins map[string]bool
	logger       *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	admins repository.AdminRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		admins:       admins,
		tokens:       tokens,
		passwords:    passwords,
		githubLogins: map[string]bool{},
		logger:       logger,
	}
}

// AllowGitHubLogins sets the GitHub accounts that may sign in as admin.
// GitHub logins are case-insensitive, so they are compared lowercased.
func (s *AuthService) AllowGitHubLogins(logins []string) {
	allowed := make(map[string]bool, len(logins))
	for _, l := range logins {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			allowed[l] = true
		}
	}
	s.githubLogins = allowed
}

// LoginResult is what a successful login produces.
type LoginResult struct {
	Principal string
	Token     string
}

// Login checks a username/password pair and issues a session token.
//
// ENUMERATION SAFETY:
// Every failure (unknown user, wrong password, empty input) returns the same
// apperror.Unauthorized, and an unknown user still pays for one bcrypt
// comparison, so neither the message nor the timing tells an attacker
// which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)

	admin, err := s.admins.GetAdminByUsername(ctx, username)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		_ = s.passwords.VerifyUnknown(password)
		s.logger.Warn("login failed", slog.String("reason", "unknown user"))
		return nil, apperror.Unauthorized()
	case err != nil:
		return nil, fmt.Errorf("service/auth: loading admin: %w", err)
	}

	if err := s.passwords.Verify(admin.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// A corrupt hash is a server problem, but the caller still only
			// learns that the login failed.
			s.logger.Error("password verification error",
				slog.Int64("adminID", admin.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Warn("login failed", slog.String("reason", "bad password"))
		return nil, apperror.Unauthorized()
	}

	return s.issue(admin.Username)
}

// LoginGitHub issues a session for an allowlisted GitHub account.
// Any other account gets the same Unauthorized as a bad password.
func (s *AuthService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*LoginResult, error) {
	if ghUser == nil || !s.githubLogins[strings.ToLower(ghUser.Login)] {
		s.logger.Warn("login failed", slog.String("reason", "github account not allowed"))
		return nil, apperror.Unauthorized()
	}
	return s.issue(githubPrincipalPrefix + strings.ToLower(ghUser.Login))
}

func (s *AuthService) issue(principal string) (*LoginResult, error) {
	token, err := s.tokens.Generate(principal)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token: %w", err)
	}

	s.logger.Info("admin signed in", slog.String("principal", principal))
	return &LoginResult{Principal: principal, Token: token}, nil
}

// CreateAdmin hashes password and stores a new credential. The seeder uses
// it for the bootstrap administrator.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("service/auth: creating admin: %w", err)
	}

	s.logger.Info("admin created",
		slog.Int64("id", admin.ID),
		slog.String("username", admin.Username),
	)
	return admin, nil
}
