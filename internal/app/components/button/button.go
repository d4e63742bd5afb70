package button

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/rms-templui/internal/app/components"
)

type Variant string
type Size string
type Type string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
	VariantOutline     Variant = "outline"
	VariantSecondary   Variant = "secondary"
	VariantGhost       Variant = "ghost"
	VariantLink        Variant = "link"
)

const (
	TypeButton Type = "button"
	TypeReset  Type = "reset"
	TypeSubmit Type = "submit"
)

const (
	SizeDefault Size = "default"
	SizeSm      Size = "sm"
	SizeLg      Size = "lg"
)

type Props struct {
	ID         string
	Class      string
	Attributes components.Attrs
	Variant    Variant
	Size       Size
	FullWidth  bool
	Href       string
	Disabled   bool
	Type       Type
	Label      string
}

const base = "inline-flex items-center justify-center gap-2 whitespace-nowrap rounded-md text-sm font-medium transition-all " +
	"disabled:pointer-events-none disabled:opacity-50 outline-none focus-visible:ring-2 focus-visible:ring-ring"

func (p Props) variantClasses() string {
	switch p.Variant {
	case VariantDestructive:
		return "bg-destructive text-white hover:bg-destructive/90"
	case VariantOutline:
		return "border bg-background hover:bg-accent hover:text-accent-foreground"
	case VariantSecondary:
		return "bg-secondary text-secondary-foreground hover:bg-secondary/80"
	case VariantGhost:
		return "hover:bg-accent hover:text-accent-foreground"
	case VariantLink:
		return "text-primary underline-offset-4 hover:underline"
	}
	return "bg-primary text-primary-foreground hover:bg-primary/90"
}

func (p Props) sizeClasses() string {
	switch p.Size {
	case SizeSm:
		return "h-8 rounded-md px-3"
	case SizeLg:
		return "h-10 rounded-md px-6"
	}
	return "h-9 px-4 py-2"
}

// Button renders a <button>, or an <a> when Href is set. Children from the context are
// rendered after Label.
func Button(props ...Props) templ.Component {
	var p Props
	if len(props) > 0 {
		p = props[0]
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := components.Class(base, p.variantClasses(), p.sizeClasses(), widthClass(p.FullWidth), p.Class)
		children := []templ.Component{}
		if p.Label != "" {
			children = append(children, components.Text(p.Label))
		}
		children = append(children, templ.GetChildren(ctx))
		ctx = templ.ClearChildren(ctx)

		attrs := components.Attrs{
			components.If(p.ID != "", components.A("id", p.ID)),
			components.A("class", class),
		}
		if p.Href != "" && !p.Disabled {
			attrs = append(attrs, components.A("href", p.Href))
			attrs = append(attrs, p.Attributes...)
			return components.El("a", attrs, children...).Render(ctx, w)
		}

		typ := p.Type
		if typ == "" {
			typ = TypeButton
		}
		attrs = append(attrs, components.A("type", string(typ)), components.If(p.Disabled, components.Flag("disabled")))
		attrs = append(attrs, p.Attributes...)
		return components.El("button", attrs, children...).Render(ctx, w)
	})
}

func widthClass(full bool) string {
	if full {
		return "w-full"
	}
	return ""
}
