// Package navigation maps roles to landing routes. It is the only place landing paths are defined.
package navigation

import "github.com/FACorreiaa/rms-templui/internal/app/models"

const (
	PublicLandingPath = "/"
	LoginPath         = "/login"
	RegisterPath      = "/register"
	DashboardPath     = "/dashboard"

	TenantDashboardPath   = "/tenant/dashboard"
	LandlordDashboardPath = "/landlord/dashboard"
	AdminDashboardPath    = "/admin/dashboard"
)

var landingPaths = map[models.Role]string{
	models.RoleTenant:   TenantDashboardPath,
	models.RoleLandlord: LandlordDashboardPath,
	models.RoleAdmin:    AdminDashboardPath,
}

// ResolveLandingPath returns the default route for role; unrecognised roles land on login.
func ResolveLandingPath(role models.Role) string {
	if path, ok := landingPaths[role]; ok {
		return path
	}
	return LoginPath
}

// SafeReturnPath reports whether next is a local path that may be used as a post-login
// return target. Scheme-relative and absolute URLs are rejected.
func SafeReturnPath(next string) bool {
	if len(next) == 0 || next[0] != '/' {
		return false
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return false
	}
	return next != LoginPath
}
