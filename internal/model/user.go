// Package model defines domain models and types used throughout the
// application including Article, Resource, User, and event structures.
package model

import (
	"database/sql"
	"time"
)

// User roles. Editors and admins may use the studio; admins additionally
// manage users and run maintenance utilities.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents a site user able to sign in.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanEdit returns true if the user holds one of the privilege labels that
// unlock editing affordances.
func (u *User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}
