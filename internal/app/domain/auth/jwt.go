package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

// roleClaims covers the two places a backend-issued JWT may carry the role.
type roleClaims struct {
	Role string `json:"role"`
	User struct {
		Role string `json:"role"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// roleFromToken reads the role claim of a JWT without verifying it. The token is only
// ever verified by the backend; this is a fallback for login answers that omit the role.
// Opaque tokens yield RoleNone.
func roleFromToken(token string) models.Role {
	claims := &roleClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.RoleNone
	}
	for _, raw := range []string{claims.User.Role, claims.Role} {
		if role := models.Role(raw); role.Valid() {
			return role
		}
	}
	return models.RoleNone
}
