// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"

	"codeberg.org/oliverandrich/account-service/internal/models"
)

// CreateUser inserts a new, inactive user and returns the stored record.
// A unique-index violation on email is reported as ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, firstName, lastName, email, passwordHash string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`INSERT INTO users (first_name, last_name, email, password_hash, is_active)
		 VALUES (?, ?, ?, ?, 0)
		 RETURNING *`,
		firstName, lastName, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ActivateUser sets is_active on the user and returns the post-update email
// and active flag. Activating an already active user is a no-op that still
// succeeds. ErrNotFound is returned when no row matched the ID.
func (r *Repository) ActivateUser(ctx context.Context, id int64) (email string, active bool, err error) {
	var row struct {
		Email    string `db:"email"`
		IsActive bool   `db:"is_active"`
	}
	err = r.db.GetContext(ctx, &row,
		`UPDATE users
		 SET is_active = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING email, is_active`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, ErrNotFound
		}
		return "", false, err
	}
	return row.Email, row.IsActive, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
