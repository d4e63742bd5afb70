// Package pages assembles full pages and HTMX fragments from components.
package pages

import (
	"github.com/a-h/templ"

	ui "github.com/FACorreiaa/rms-templui/internal/app/components"
	"github.com/FACorreiaa/rms-templui/internal/app/components/button"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

func LayoutPage(data models.LayoutTempl) templ.Component {
	return ui.Group(
		templ.Raw("<!doctype html>"),
		ui.El("html", ui.Attrs{ui.A("lang", "en")},
			ui.El("head", nil,
				ui.El("meta", ui.Attrs{ui.A("charset", "utf-8")}),
				ui.El("meta", ui.Attrs{ui.A("name", "viewport"), ui.A("content", "width=device-width, initial-scale=1")}),
				ui.El("title", nil, ui.Text(data.Title)),
				ui.El("script", ui.Attrs{ui.A("src", htmxSrc)}),
				ui.El("script", ui.Attrs{ui.A("src", "https://cdn.tailwindcss.com")}),
			),
			ui.El("body", ui.Attrs{ui.A("class", "min-h-screen bg-gray-50 text-gray-900"), ui.A("hx-boost", "true")},
				navbar(data),
				ui.El("main", ui.Attrs{ui.A("id", "content"), ui.A("class", "mx-auto max-w-4xl px-4 py-8")}, data.Content),
			),
		),
	)
}

func navbar(data models.LayoutTempl) templ.Component {
	items := make([]templ.Component, 0, len(data.Nav.Items))
	for _, item := range data.Nav.Items {
		class := "rounded-md px-3 py-2 text-sm font-medium text-gray-600 hover:bg-gray-100"
		if item.Name == data.ActiveNav {
			class = ui.Class(class, "bg-gray-900 text-white hover:bg-gray-900")
		}
		items = append(items, ui.El("a", ui.Attrs{
			ui.A("href", item.URL),
			ui.A("class", class),
			ui.If(item.Name == data.ActiveNav, ui.A("aria-current", "page")),
		}, ui.Text(item.Name)))
	}

	var account templ.Component
	if data.Viewer.Authenticated {
		account = ui.El("form", ui.Attrs{
			ui.A("method", "post"),
			ui.A("action", "/logout"),
			ui.A("class", "flex items-center gap-3"),
		},
			ui.El("span", ui.Attrs{ui.A("class", "text-sm text-gray-500"), ui.A("data-role", data.Viewer.Role.String())},
				ui.Text(viewerLabel(data.Viewer))),
			button.Button(button.Props{ID: "logout", Type: button.TypeSubmit, Variant: button.VariantOutline, Size: button.SizeSm, Label: "Sign out"}),
		)
	}

	return ui.El("nav", ui.Attrs{ui.A("class", "border-b bg-white")},
		ui.El("div", ui.Attrs{ui.A("class", "mx-auto flex max-w-4xl items-center justify-between px-4 py-3")},
			ui.El("a", ui.Attrs{ui.A("href", "/"), ui.A("class", "text-lg font-semibold")}, ui.Text("RMS")),
			ui.El("div", ui.Attrs{ui.A("id", "nav-links"), ui.A("class", "flex items-center gap-1")}, items...),
			account,
		),
	)
}

func viewerLabel(v models.Viewer) string {
	if v.Username == "" {
		return titleCase(v.Role.String())
	}
	return v.Username + " · " + titleCase(v.Role.String())
}

// Loading is the neutral placeholder shown while a browser context's session is being
// restored. It polls the same path until the guard can decide.
func Loading(path string) templ.Component {
	return ui.El("div", ui.Attrs{
		ui.A("id", "session-loading"),
		ui.A("class", "flex h-40 items-center justify-center text-gray-500"),
		ui.A("hx-get", path),
		ui.A("hx-trigger", "load delay:1s"),
		ui.A("hx-select", "#content"),
		ui.A("hx-target", "#content"),
		ui.A("hx-swap", "outerHTML"),
	}, ui.Text("Loading…"))
}

func NotFound() templ.Component {
	return ui.El("section", ui.Attrs{ui.A("class", "space-y-4 text-center")},
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text("Page not found")),
		button.Button(button.Props{Href: "/", Variant: button.VariantLink, Label: "Back home"}),
	)
}
