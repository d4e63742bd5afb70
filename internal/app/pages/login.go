package pages

import (
	"github.com/a-h/templ"

	ui "github.com/FACorreiaa/rms-templui/internal/app/components"
	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/components/button"
	"github.com/FACorreiaa/rms-templui/internal/app/components/form"
)

type LoginProps struct {
	Username    string
	RememberMe  bool
	Next        string
	FieldErrors map[string]string
	Banner      banner.BannerProps
}

// LoginForm is swapped in place on HTMX submissions.
func LoginForm(p LoginProps) templ.Component {
	return ui.El("form", ui.Attrs{
		ui.A("id", "login-form"),
		ui.A("method", "post"),
		ui.A("action", "/login"),
		ui.A("hx-post", "/login"),
		ui.A("hx-target", "#login-form"),
		ui.A("hx-swap", "outerHTML"),
		ui.A("class", "space-y-4"),
	},
		banner.Banner(p.Banner),
		ui.When(p.Next != "", ui.El("input", ui.Attrs{ui.A("type", "hidden"), ui.A("name", "next"), ui.A("value", p.Next)})),
		form.Input(form.FieldProps{Name: "username", Label: "Username", Value: p.Username, Error: p.FieldErrors["username"], Required: true}),
		form.Input(form.FieldProps{Name: "password", Label: "Password", Type: "password", Error: p.FieldErrors["password"], Required: true}),
		form.Checkbox(form.FieldProps{Name: "remember_me", Label: "Remember me"}, p.RememberMe),
		button.Button(button.Props{ID: "login-submit", Type: button.TypeSubmit, FullWidth: true, Label: "Sign in"}),
		ui.El("p", ui.Attrs{ui.A("class", "text-center text-sm text-gray-500")},
			ui.Text("No account yet? "),
			ui.El("a", ui.Attrs{ui.A("href", "/register"), ui.A("class", "text-primary underline")}, ui.Text("Register")),
		),
	)
}

func LoginPage(p LoginProps) templ.Component {
	return ui.El("section", ui.Attrs{ui.A("class", "mx-auto max-w-sm space-y-6")},
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text("Sign in")),
		LoginForm(p),
	)
}
