// Package guard decides what a request for a protected path should get.
package guard

import (
	"net/url"

	"github.com/FACorreiaa/rms-templui/internal/app/domain/auth"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/navigation"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

type Action int

const (
	Render Action = iota
	Loading
	RedirectToLogin
	RedirectToRoleHome
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToRoleHome:
		return "redirect_role_home"
	}
	return "unknown"
}

// Decision is what the caller should do. Location is set for redirects only.
type Decision struct {
	Action   Action
	Location string
}

// Decide is pure. requiredRole RoleNone means any signed-in user.
func Decide(state auth.Snapshot, requiredRole models.Role, requestedPath string) Decision {
	switch {
	case state.IsBootstrapping:
		return Decision{Action: Loading}
	case !state.IsAuthenticated:
		return Decision{Action: RedirectToLogin, Location: LoginLocation(requestedPath)}
	case requiredRole != models.RoleNone && state.Role != requiredRole:
		return Decision{Action: RedirectToRoleHome, Location: navigation.ResolveLandingPath(state.Role)}
	}
	return Decision{Action: Render}
}

// LoginLocation is the login path carrying requestedPath as the return target.
func LoginLocation(requestedPath string) string {
	if !navigation.SafeReturnPath(requestedPath) {
		return navigation.LoginPath
	}
	return navigation.LoginPath + "?" + url.Values{"next": {requestedPath}}.Encode()
}
