package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the internal role vocabulary used by the dashboard.
type UserRole string

const (
	RoleDirector        UserRole = "directivo"
	RolePsychopedagogue UserRole = "psicopedagogo"
	RoleTeacher         UserRole = "docente"
	RoleParent          UserRole = "padre"
	RoleStudent         UserRole = "estudiante"
)

// AuthUser is the authenticated caller identity.
type AuthUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// Session carries the bearer credential forwarded to remote endpoints.
type Session struct {
	AccessToken string    `json:"-"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
