// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/ocms-admin/internal/auth"
	"github.com/olegiv/ocms-admin/internal/middleware"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/session"
	"github.com/olegiv/ocms-admin/internal/util"
)

// LoginRequest is the login form plus the guarded location the user was
// sent away from.
type LoginRequest struct {
	auth.LoginInput
	From string `json:"from"`
}

// LoginResponse tells the shell where to go after login.
type LoginResponse struct {
	User     session.User `json:"user"`
	Redirect string       `json:"redirect"`
	Message  string       `json:"message"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	LastActive    *time.Time    `json:"lastActive,omitempty"`
	IdleLimitMS   int64         `json:"idleLimitMs"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	ip := util.ClientIP(r)

	user, err := h.authn.Login(ctx, req.LoginInput, ip)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			WriteValidationError(w, verr.Fields)
		case errors.Is(err, auth.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, "invalid_credentials", auth.MsgInvalidCredentials, nil)
		case errors.Is(err, auth.ErrAccountLocked):
			WriteError(w, http.StatusTooManyRequests, "account_locked", auth.MsgAccountLocked, nil)
		default:
			h.logger.Error("login failed", "error", err, "ip", ip)
			WriteInternalError(w, auth.MsgLoginFailed)
		}
		return
	}

	su := toSessionUser(user)
	if err := h.creds.Login(ctx, su, req.Remember); err != nil {
		h.logger.Error("failed to start session", "error", err, "user_id", user.ID)
		WriteInternalError(w, auth.MsgLoginFailed)
		return
	}

	_ = h.events.LogSessionEvent(ctx, model.EventLevelInfo, "Session started", &user.ID, ip,
		map[string]any{"remember": req.Remember})

	WriteSuccess(w, LoginResponse{
		User:     su,
		Redirect: middleware.ReturnTo(req.From, h.knownRoute),
		Message:  auth.MsgLoginSucceeded,
	}, nil)
}

// Signup handles POST /api/auth/signup. The new account is not signed in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.authn.Signup(r.Context(), in, util.ClientIP(r))
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			WriteValidationError(w, verr.Fields)
		case errors.Is(err, auth.ErrEmailTaken):
			WriteError(w, http.StatusConflict, "email_taken", auth.MsgEmailTaken,
				map[string]string{"email": auth.MsgEmailTaken})
		default:
			h.logger.Error("signup failed", "error", err)
			WriteInternalError(w, auth.MsgSignupFailed)
		}
		return
	}

	WriteCreated(w, map[string]any{
		"user":    toSessionUser(user),
		"message": auth.MsgSignupSucceeded,
	})
}

// Logout handles POST /api/auth/logout. Open streams of the session are
// closed first.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, signedIn := h.creds.User(ctx)
	if token := h.creds.Token(ctx); token != "" {
		h.monitors.Stop(token)
	}

	if err := h.creds.Logout(ctx); err != nil {
		h.logger.Error("failed to destroy session", "error", err)
		WriteInternalError(w, "Could not log out. Please try again.")
		return
	}

	if signedIn {
		_ = h.events.LogSessionEvent(ctx, model.EventLevelInfo, "User logged out", &u.ID, util.ClientIP(r), nil)
	}
	WriteSuccess(w, map[string]string{"redirect": middleware.LoginPath}, nil)
}

// Session handles GET /api/session. It never changes the session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{IdleLimitMS: h.idleLimit.Milliseconds()}
	if u, ok := h.creds.User(r.Context()); ok {
		resp.Authenticated = true
		resp.User = &u
		if last := h.creds.LastActive(r.Context()); !last.IsZero() {
			resp.LastActive = &last
		}
	}
	WriteSuccess(w, resp, nil)
}

// Activity handles POST /api/session/activity, the interaction signal of
// the shell. It resets the idle clock of the session and of every stream
// the session has open.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.creds.Touch(ctx)
	if token := h.creds.Token(ctx); token != "" {
		h.monitors.Touch(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionUser(u model.User) session.User {
	return session.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
