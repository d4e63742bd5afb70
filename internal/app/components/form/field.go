// Package form renders labelled inputs with inline error messages.
package form

import (
	"github.com/a-h/templ"

	"github.com/FACorreiaa/rms-templui/internal/app/components"
)

type FieldProps struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Error       string
	Required    bool
	Placeholder string
	// Attributes are added to the input, e.g. hx-post for write-through edits.
	Attributes components.Attrs
}

const (
	inputClass = "block w-full rounded-md border border-gray-300 px-3 py-2 text-sm shadow-sm focus:border-primary focus:outline-none"
	errorClass = "border-red-500 focus:border-red-500"
)

func label(p FieldProps) templ.Component {
	text := p.Label
	if p.Required {
		text += " *"
	}
	return components.El("label", components.Attrs{
		components.A("for", p.Name),
		components.A("class", "block text-sm font-medium text-gray-700"),
	}, components.Text(text))
}

func errorText(p FieldProps) templ.Component {
	if p.Error == "" {
		return nil
	}
	return components.El("p", components.Attrs{
		components.A("id", p.Name+"-error"),
		components.A("class", "mt-1 text-xs text-red-600"),
		components.A("data-field-error", p.Name),
	}, components.Text(p.Error))
}

func controlAttrs(p FieldProps, class string) components.Attrs {
	attrs := components.Attrs{
		components.A("id", p.Name),
		components.A("name", p.Name),
		components.A("class", class),
		components.If(p.Required, components.Flag("required")),
		components.If(p.Error != "", components.A("aria-invalid", "true")),
		components.If(p.Error != "", components.A("aria-describedby", p.Name+"-error")),
	}
	return append(attrs, p.Attributes...)
}

func Input(p FieldProps) templ.Component {
	typ := p.Type
	if typ == "" {
		typ = "text"
	}
	class := inputClass
	if p.Error != "" {
		class = components.Class(inputClass, errorClass)
	}
	attrs := controlAttrs(p, class)
	attrs = append(attrs,
		components.A("type", typ),
		components.If(typ != "password", components.A("value", p.Value)),
		components.If(p.Placeholder != "", components.A("placeholder", p.Placeholder)),
	)
	return components.El("div", components.Attrs{components.A("class", "space-y-1")},
		label(p),
		components.El("input", attrs),
		errorText(p),
	)
}

type Option struct {
	Value string
	Label string
}

func Select(p FieldProps, options []Option) templ.Component {
	class := inputClass
	if p.Error != "" {
		class = components.Class(inputClass, errorClass)
	}
	opts := []templ.Component{
		components.El("option", components.Attrs{components.A("value", "")}, components.Text("Select…")),
	}
	for _, o := range options {
		opts = append(opts, components.El("option", components.Attrs{
			components.A("value", o.Value),
			components.If(o.Value == p.Value, components.Flag("selected")),
		}, components.Text(o.Label)))
	}
	return components.El("div", components.Attrs{components.A("class", "space-y-1")},
		label(p),
		components.El("select", controlAttrs(p, class), opts...),
		errorText(p),
	)
}

// Checkbox posts "true" when checked; a hidden input posts "false" otherwise.
func Checkbox(p FieldProps, checked bool) templ.Component {
	attrs := controlAttrs(p, "h-4 w-4 rounded border-gray-300")
	attrs = append(attrs,
		components.A("type", "checkbox"),
		components.A("value", "true"),
		components.If(checked, components.Flag("checked")),
	)
	return components.El("div", components.Attrs{components.A("class", "space-y-1")},
		components.El("div", components.Attrs{components.A("class", "flex items-center gap-2")},
			components.El("input", components.Attrs{
				components.A("type", "hidden"),
				components.A("name", p.Name),
				components.A("value", "false"),
			}),
			components.El("input", attrs),
			label(p),
		),
		errorText(p),
	)
}
