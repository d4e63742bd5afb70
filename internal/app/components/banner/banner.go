package banner

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/rms-templui/internal/app/components"
)

type Type string

const (
	BannerError   Type = "error"
	BannerSuccess Type = "success"
	BannerInfo    Type = "info"
	BannerWarning Type = "warning"
)

type BannerProps struct {
	Type        Type
	Message     string
	Dismissable bool
	ID          string
	AutoDismiss int // seconds, 0 keeps it
}

func (p BannerProps) classes() string {
	base := "rounded-md border px-4 py-3 text-sm flex items-start justify-between gap-3"
	switch p.Type {
	case BannerError:
		return components.Class(base, "border-red-300 bg-red-50 text-red-800")
	case BannerSuccess:
		return components.Class(base, "border-green-300 bg-green-50 text-green-800")
	case BannerWarning:
		return components.Class(base, "border-amber-300 bg-amber-50 text-amber-800")
	}
	return components.Class(base, "border-blue-300 bg-blue-50 text-blue-800")
}

func Banner(p BannerProps) templ.Component {
	if p.Message == "" {
		return templ.NopComponent
	}
	role := "status"
	if p.Type == BannerError {
		role = "alert"
	}
	var dismiss templ.Component
	if p.Dismissable {
		dismiss = components.El("button", components.Attrs{
			components.A("type", "button"),
			components.A("class", "font-semibold"),
			components.A("aria-label", "Dismiss"),
			components.A("onclick", "this.parentElement.remove()"),
		}, components.Text("×"))
	}
	return components.El("div", components.Attrs{
		components.If(p.ID != "", components.A("id", p.ID)),
		components.A("role", role),
		components.A("class", p.classes()),
		components.A("data-banner", string(p.Type)),
		components.If(p.AutoDismiss > 0, components.A("data-auto-dismiss", strconv.Itoa(p.AutoDismiss))),
	}, components.El("span", nil, components.Text(p.Message)), dismiss)
}
