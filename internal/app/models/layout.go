package models

import "github.com/a-h/templ"

// Viewer is what the layout knows about the current browser context.
type Viewer struct {
	Authenticated bool
	Role          Role
	Username      string
}

type NavItem struct {
	Name string
	URL  string
	Icon string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title     string
	Viewer    Viewer
	Nav       Navigation
	ActiveNav string
	Content   templ.Component
}

var OfflineNav = Navigation{
	Items: []NavItem{
		{Name: "Home", URL: "/"},
		{Name: "Sign in", URL: "/login"},
		{Name: "Register", URL: "/register"},
	},
}

var TenantNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/tenant/dashboard"},
		{Name: "My House", URL: "/my-house"},
		{Name: "Profile", URL: "/profile"},
	},
}

var LandlordNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/landlord/dashboard"},
		{Name: "Houses", URL: "/houses"},
		{Name: "Bookings", URL: "/bookings"},
		{Name: "Invoices", URL: "/invoices"},
		{Name: "Profile", URL: "/profile"},
	},
}

var AdminNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/admin/dashboard"},
		{Name: "Profile", URL: "/profile"},
	},
}

// NavFor picks the navigation for a viewer.
func NavFor(v Viewer) Navigation {
	if !v.Authenticated {
		return OfflineNav
	}
	switch v.Role {
	case RoleTenant:
		return TenantNav
	case RoleLandlord:
		return LandlordNav
	case RoleAdmin:
		return AdminNav
	}
	return OfflineNav
}
