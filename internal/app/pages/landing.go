package pages

import (
	"github.com/a-h/templ"

	ui "github.com/FACorreiaa/rms-templui/internal/app/components"
	"github.com/FACorreiaa/rms-templui/internal/app/components/button"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

func Landing(v models.Viewer, dashboard string) templ.Component {
	var actions templ.Component
	if v.Authenticated {
		actions = button.Button(button.Props{ID: "go-dashboard", Href: dashboard, Size: button.SizeLg, Label: "Go to your dashboard"})
	} else {
		actions = ui.Group(
			button.Button(button.Props{ID: "go-login", Href: "/login", Size: button.SizeLg, Label: "Sign in"}),
			button.Button(button.Props{ID: "go-register", Href: "/register", Size: button.SizeLg, Variant: button.VariantOutline, Label: "Create an account"}),
		)
	}
	return ui.El("section", ui.Attrs{ui.A("class", "space-y-6 py-12 text-center")},
		ui.El("h1", ui.Attrs{ui.A("class", "text-4xl font-bold")}, ui.Text("Rental management, simplified")),
		ui.El("p", ui.Attrs{ui.A("class", "text-gray-600")},
			ui.Text("Landlords track houses, bookings and invoices. Tenants keep their lease and payments in one place.")),
		ui.El("div", ui.Attrs{ui.A("class", "flex justify-center gap-3")}, actions),
	)
}
