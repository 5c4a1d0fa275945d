package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User is either the administrator or a player known by display name.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:  2,
		RolePlayer: 1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidatePassword checks the minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// Display name bounds, in runes.
const (
	MinDisplayName = 2
	MaxDisplayName = 32
)

// NormalizeDisplayName trims a player's display name and checks its length.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinDisplayName || n > MaxDisplayName {
		return "", fmt.Errorf("display name must be %d-%d characters", MinDisplayName, MaxDisplayName)
	}
	return name, nil
}
