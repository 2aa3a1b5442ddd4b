package model

import (
	"errors"
	"strings"
)

// User is the cached profile of the signed-in user.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Roles.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Validation errors.
var (
	ErrNameRequired    = errors.New("item name required")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidReward   = errors.New("reward must be a non-negative number")
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[strings.ToUpper(role)] >= levels[strings.ToUpper(minimum)] && levels[strings.ToUpper(minimum)] > 0
}

// CanDeleteItem reports whether u may delete item: admins and the poster can.
func CanDeleteItem(u *User, item Item) bool {
	if u == nil {
		return false
	}
	if RoleAtLeast(u.Role, RoleAdmin) {
		return true
	}
	return item.PostedByID != 0 && item.PostedByID == u.ID
}

// CanMarkFound reports whether u may file a found report for item.
func CanMarkFound(u *User, item Item) bool {
	if u == nil {
		return false
	}
	if EffectiveStatus(item) != StatusLost {
		return false
	}
	return item.PostedByID != u.ID
}
