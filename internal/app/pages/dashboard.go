package pages

import (
	"sort"

	"github.com/a-h/templ"

	ui "github.com/FACorreiaa/rms-templui/internal/app/components"
	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/components/button"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

type card struct {
	title string
	body  string
	href  string
}

var dashboardCards = map[models.Role][]card{
	models.RoleTenant: {
		{"My house", "Lease, rent and the unit you live in.", "/my-house"},
		{"Profile", "Contact details and emergency contact.", "/profile"},
	},
	models.RoleLandlord: {
		{"Houses", "Properties and units you manage.", "/houses"},
		{"Bookings", "Viewing and move-in requests.", "/bookings"},
		{"Invoices", "Rent invoices and payments.", "/invoices"},
	},
	models.RoleAdmin: {
		{"Profile", "Your administrator account.", "/profile"},
	},
}

// Dashboard is the role home page.
func Dashboard(v models.Viewer, flash banner.BannerProps) templ.Component {
	cards := dashboardCards[v.Role]
	items := make([]templ.Component, 0, len(cards))
	for _, c := range cards {
		items = append(items, ui.El("a", ui.Attrs{
			ui.A("href", c.href),
			ui.A("class", "block rounded-lg border bg-white p-4 shadow-sm hover:border-primary"),
		},
			ui.El("h2", ui.Attrs{ui.A("class", "font-semibold")}, ui.Text(c.title)),
			ui.El("p", ui.Attrs{ui.A("class", "text-sm text-gray-500")}, ui.Text(c.body)),
		))
	}
	greeting := "Welcome"
	if v.Username != "" {
		greeting += ", " + v.Username
	}
	return ui.El("section", ui.Attrs{ui.A("class", "space-y-6"), ui.A("data-dashboard", v.Role.String())},
		banner.Banner(flash),
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text(greeting)),
		ui.El("p", ui.Attrs{ui.A("class", "text-gray-500")}, ui.Text(titleCase(v.Role.String())+" dashboard")),
		ui.El("div", ui.Attrs{ui.A("class", "grid gap-4 sm:grid-cols-2")}, items...),
	)
}

// Placeholder stands in for role pages whose backend features are not wired yet.
func Placeholder(title, description string) templ.Component {
	return ui.El("section", ui.Attrs{ui.A("class", "space-y-4"), ui.A("data-placeholder", title)},
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text(title)),
		ui.El("p", ui.Attrs{ui.A("class", "text-gray-500")}, ui.Text(description)),
	)
}

type ProfileProps struct {
	Viewer     models.Viewer
	UserInfo   map[string]any
	RoleSwitch bool
	Banner     banner.BannerProps
}

func Profile(p ProfileProps) templ.Component {
	keys := make([]string, 0, len(p.UserInfo))
	for k := range p.UserInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]templ.Component, 0, len(keys)+1)
	rows = append(rows, infoRow("Role", titleCase(p.Viewer.Role.String())))
	for _, k := range keys {
		if s, ok := p.UserInfo[k].(string); ok {
			rows = append(rows, infoRow(titleCase(k), s))
		}
	}

	return ui.El("section", ui.Attrs{ui.A("class", "space-y-6")},
		banner.Banner(p.Banner),
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text("Profile")),
		ui.El("dl", ui.Attrs{ui.A("id", "profile"), ui.A("class", "divide-y rounded-lg border bg-white p-4 text-sm")}, rows...),
		ui.When(p.RoleSwitch, roleSwitcher(p.Viewer.Role)),
	)
}

func infoRow(label, value string) templ.Component {
	return ui.El("div", ui.Attrs{ui.A("class", "flex justify-between py-1")},
		ui.El("dt", ui.Attrs{ui.A("class", "text-gray-500")}, ui.Text(label)),
		ui.El("dd", ui.Attrs{ui.A("class", "font-medium")}, ui.Text(value)),
	)
}

// roleSwitcher is a development aid; the server only mounts its endpoint when enabled.
func roleSwitcher(current models.Role) templ.Component {
	buttons := make([]templ.Component, 0, 3)
	for _, r := range []models.Role{models.RoleTenant, models.RoleLandlord, models.RoleAdmin} {
		buttons = append(buttons, button.Button(button.Props{
			ID:         "switch-" + r.String(),
			Type:       button.TypeSubmit,
			Variant:    button.VariantSecondary,
			Size:       button.SizeSm,
			Disabled:   r == current,
			Label:      titleCase(r.String()),
			Attributes: ui.Attrs{ui.A("name", "role"), ui.A("value", r.String())},
		}))
	}
	return ui.El("form", ui.Attrs{
		ui.A("id", "role-switch"),
		ui.A("method", "post"),
		ui.A("action", "/debug/role"),
		ui.A("class", "space-y-2 rounded-lg border border-dashed p-4"),
	},
		ui.El("p", ui.Attrs{ui.A("class", "text-xs uppercase text-gray-400")}, ui.Text("Switch role (development)")),
		ui.El("div", ui.Attrs{ui.A("class", "flex gap-2")}, buttons...),
	)
}
