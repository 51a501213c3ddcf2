package models

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleEngineer UserRole = "engineer"
	UserRoleUser     UserRole = "user"
	UserRoleObserver UserRole = "observer"
)

var UserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleManager,
	UserRoleEngineer,
	UserRoleUser,
	UserRoleObserver,
}

func (r UserRole) Valid() bool {
	for _, known := range UserRoles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Name      string    `json:"name"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) HasRole(role UserRole) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the user's role is in the given allow-set.
// Roles are not ordinal; every gated operation enumerates its set explicitly,
// including admin.
func (u *User) HasAnyRole(roles ...UserRole) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
