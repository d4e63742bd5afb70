package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/rms-templui/internal/app/domain/auth"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

func TestDecide(t *testing.T) {
	signedIn := func(role models.Role) auth.Snapshot {
		return auth.Snapshot{IsAuthenticated: true, Role: role}
	}

	tests := []struct {
		name     string
		state    auth.Snapshot
		required models.Role
		path     string
		want     Decision
	}{
		{
			name:     "bootstrapping never redirects",
			state:    auth.Snapshot{IsBootstrapping: true},
			required: models.RoleLandlord,
			path:     "/houses",
			want:     Decision{Action: Loading},
		},
		{
			name:     "signed out goes to login with return path",
			state:    auth.Snapshot{},
			required: models.RoleLandlord,
			path:     "/houses",
			want:     Decision{Action: RedirectToLogin, Location: "/login?next=%2Fhouses"},
		},
		{
			name:  "signed out on any-role route",
			state: auth.Snapshot{},
			path:  "/profile",
			want:  Decision{Action: RedirectToLogin, Location: "/login?next=%2Fprofile"},
		},
		{
			name:     "tenant on landlord route goes to tenant landing",
			state:    signedIn(models.RoleTenant),
			required: models.RoleLandlord,
			path:     "/houses",
			want:     Decision{Action: RedirectToRoleHome, Location: "/tenant/dashboard"},
		},
		{
			name:     "landlord on admin route",
			state:    signedIn(models.RoleLandlord),
			required: models.RoleAdmin,
			path:     "/admin/dashboard",
			want:     Decision{Action: RedirectToRoleHome, Location: "/landlord/dashboard"},
		},
		{
			name:     "matching role renders",
			state:    signedIn(models.RoleLandlord),
			required: models.RoleLandlord,
			path:     "/houses",
			want:     Decision{Action: Render},
		},
		{
			name:  "any signed-in role renders an unscoped route",
			state: signedIn(models.RoleAdmin),
			path:  "/profile",
			want:  Decision{Action: Render},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.required, tt.path))
		})
	}
}

func TestDecideExhaustive(t *testing.T) {
	roles := []models.Role{models.RoleNone, models.RoleTenant, models.RoleLandlord, models.RoleAdmin}
	for _, required := range roles {
		for _, have := range roles[1:] {
			d := Decide(auth.Snapshot{IsAuthenticated: true, Role: have}, required, "/x")
			if required == models.RoleNone || required == have {
				assert.Equal(t, Render, d.Action)
			} else {
				assert.Equal(t, RedirectToRoleHome, d.Action)
				assert.NotEqual(t, "/login", d.Location)
			}
		}
	}
}

func TestLoginLocationDropsUnsafeTargets(t *testing.T) {
	assert.Equal(t, "/login", LoginLocation("//evil.example"))
	assert.Equal(t, "/login", LoginLocation("https://evil.example"))
	assert.Equal(t, "/login", LoginLocation("/login"))
	assert.Equal(t, "/login?next=%2Fbookings%3Fpage%3D2", LoginLocation("/bookings?page=2"))
}
