// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account implements the registration, login, and activation flows.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"codeberg.org/oliverandrich/account-service/internal/services/email"
	"codeberg.org/oliverandrich/account-service/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNotActivated     = errors.New("account not activated")
	ErrInvalidToken     = errors.New("invalid activation token")
	ErrActivationFailed = errors.New("activation failed")
	ErrNotification     = errors.New("failed to send activation email")
)

// bcryptCost matches the cost factor the stored hashes were created with.
const bcryptCost = 10

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcryptCost)

// Service orchestrates the account lifecycle flows. All collaborators are
// injected so tests can substitute fakes.
type Service struct {
	repo     *repository.Repository
	codec    *token.Codec
	notifier email.Notifier
	baseURL  string
}

// NewService creates a new account service. baseURL is the public base URL
// embedded in activation links.
func NewService(repo *repository.Repository, codec *token.Codec, notifier email.Notifier, baseURL string) *Service {
	return &Service{
		repo:     repo,
		codec:    codec,
		notifier: notifier,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register hashes the password, inserts an inactive user, mints an
// activation token, and emails the activation link. If the email cannot be
// sent the user record stays persisted inactive; there is no rollback.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	slog.Info("register_request", "first_name", params.FirstName, "last_name", params.LastName, "email", params.Email)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, params.FirstName, params.LastName, params.Email, string(passwordHash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	activationToken, err := s.codec.Mint(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint activation token: %w", err)
	}

	link := fmt.Sprintf("%s/activate/%s", s.baseURL, activationToken)
	if err := s.notifier.SendActivation(ctx, user.Email, link); err != nil {
		slog.Error("activation_email_failed", "email", user.Email, "error", err)
		return nil, ErrNotification
	}

	slog.Info("register_success", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login authenticates a user. The password is verified before the activation
// state is checked, so a wrong password on an inactive account reports the
// password error.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*models.User, error) {
	slog.Info("login_request", "email", emailAddr)

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", emailAddr, "reason", "user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", emailAddr, "reason", "invalid_password")
		return nil, ErrInvalidPassword
	}

	if !user.IsActive {
		slog.Warn("login_failed", "email", emailAddr, "reason", "not_activated")
		return nil, ErrNotActivated
	}

	slog.Info("login_success", "user_id", user.ID, "email", emailAddr)
	return user, nil
}

// Activate verifies the token and flips the bound user's active flag.
// Activating an already active account is a no-op success. The activated
// user's email is returned for the post-activation redirect.
func (s *Service) Activate(ctx context.Context, tokenString string) (string, error) {
	userID, err := s.codec.Verify(tokenString)
	if err != nil {
		slog.Warn("activation_failed", "reason", "invalid_token")
		return "", ErrInvalidToken
	}

	emailAddr, active, err := s.repo.ActivateUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A token bound to a nonexistent user is indistinguishable
			// from a malformed one as far as the caller is concerned.
			slog.Warn("activation_failed", "reason", "unknown_user", "user_id", userID)
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to activate user: %w", err)
	}

	if !active {
		slog.Error("activation_failed", "reason", "store_reported_inactive", "user_id", userID)
		return "", ErrActivationFailed
	}

	slog.Info("activation_success", "user_id", userID, "email", emailAddr)
	return emailAddr, nil
}
