// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ocms-admin/internal/auth"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/store"
)

// LockoutTracker counts failed logins per account.
type LockoutTracker interface {
	IsAccountLocked(email string) (bool, time.Duration)
	RecordFailedAttempt(email string) (bool, time.Duration)
	RecordSuccessfulLogin(email string)
}

// Authenticator checks login and signup forms against the users table.
type Authenticator struct {
	queries *store.Queries
	lockout LockoutTracker
	events  *EventService
	now     func() time.Time
}

// NewAuthenticator creates an authenticator. lockout and events may be nil.
func NewAuthenticator(db *sql.DB, lockout LockoutTracker, events *EventService) *Authenticator {
	return &Authenticator{
		queries: store.New(db),
		lockout: lockout,
		events:  events,
		now:     time.Now,
	}
}

// Login validates the form and verifies the credentials. Validation
// failures return *auth.ValidationError without touching the store.
func (a *Authenticator) Login(ctx context.Context, in auth.LoginInput, ip string) (model.User, error) {
	if errs := auth.ValidateLogin(in); errs.Any() {
		return model.User{}, &auth.ValidationError{Fields: errs}
	}

	email := auth.NormalizeEmail(in.Email)

	if a.lockout != nil {
		if locked, remaining := a.lockout.IsAccountLocked(email); locked {
			slog.Warn("login attempt on locked account", "email", email, "ip", ip)
			return model.User{}, fmt.Errorf("%w: retry in %s", auth.ErrAccountLocked, remaining.Round(time.Second))
		}
	}

	user, err := a.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		a.loginFailed(ctx, email, ip, nil)
		return model.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(in.Password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return model.User{}, auth.ErrInvalidCredentials
	}
	if !ok {
		a.loginFailed(ctx, email, ip, &user.ID)
		return model.User{}, auth.ErrInvalidCredentials
	}

	if a.lockout != nil {
		a.lockout.RecordSuccessfulLogin(email)
	}

	now := a.now().UTC()
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(in.Password); err == nil {
			if err := a.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           user.ID,
			}); err != nil {
				slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := a.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: now,
		ID:          user.ID,
	}); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	if a.events != nil {
		_ = a.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", &user.ID, ip,
			map[string]any{"email": user.Email, "remember": in.Remember})
	}

	return toModelUser(user), nil
}

func (a *Authenticator) loginFailed(ctx context.Context, email, ip string, userID *int64) {
	var locked bool
	var lockFor time.Duration
	if a.lockout != nil {
		locked, lockFor = a.lockout.RecordFailedAttempt(email)
	}

	if a.events == nil {
		return
	}
	_ = a.events.LogAuthEvent(ctx, model.EventLevelWarning, "Failed login attempt", userID, ip,
		map[string]any{"email": email})
	if locked {
		_ = a.events.LogAuthEvent(ctx, model.EventLevelWarning, "Account locked", userID, ip,
			map[string]any{"email": email, "duration": lockFor.String()})
	}
}

// Signup validates the form and creates an admin account. The new user is
// not logged in.
func (a *Authenticator) Signup(ctx context.Context, in auth.SignupInput, ip string) (model.User, error) {
	if errs := auth.ValidateSignup(in); errs.Any() {
		return model.User{}, &auth.ValidationError{Fields: errs}
	}

	email := auth.NormalizeEmail(in.Email)

	_, err := a.queries.GetUserByEmail(ctx, email)
	if err == nil {
		return model.User{}, auth.ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := a.now().UTC()
	user, err := a.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Name:         strings.TrimSpace(in.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent signup for the same address.
		if store.IsUniqueViolation(err) {
			return model.User{}, auth.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	if a.events != nil {
		_ = a.events.LogAuthEvent(ctx, model.EventLevelInfo, "Account created", &user.ID, ip,
			map[string]any{"email": user.Email})
	}

	return toModelUser(user), nil
}

func toModelUser(u store.User) model.User {
	return model.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
