// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the records managed by the admin panel: users,
// collection items for every feature, visitors and audit events.
package model

import "time"

// RoleAdmin is the admin user role.
const RoleAdmin = "admin"

// User is a panel account as exposed to handlers. The password hash never
// leaves the store layer.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
