// Package components holds the small HTML building blocks pages are assembled from.
package components

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// Attr is one HTML attribute. Bool attributes render without a value.
type Attr struct {
	Key   string
	Value string
	Bool  bool
}

type Attrs []Attr

func A(key, value string) Attr { return Attr{Key: key, Value: value} }

func Flag(key string) Attr { return Attr{Key: key, Bool: true} }

// If returns a when cond holds and an empty attribute otherwise.
func If(cond bool, a Attr) Attr {
	if !cond {
		return Attr{}
	}
	return a
}

var voidTags = map[string]bool{"input": true, "br": true, "hr": true, "meta": true, "link": true, "img": true}

// El renders <tag attrs>children</tag>.
func El(tag string, attrs Attrs, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<"+tag); err != nil {
			return err
		}
		for _, a := range attrs {
			if a.Key == "" {
				continue
			}
			s := " " + a.Key
			if !a.Bool {
				s += `="` + templ.EscapeString(a.Value) + `"`
			}
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if voidTags[tag] {
			return nil
		}
		for _, child := range children {
			if child == nil {
				continue
			}
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

// Text renders escaped text.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

// Group renders components one after another.
func Group(children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, child := range children {
			if child == nil {
				continue
			}
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Class merges tailwind classes; later classes win over conflicting earlier ones.
func Class(classes ...string) string {
	return twmerge.Merge(classes...)
}

// When renders c only if cond holds.
func When(cond bool, c templ.Component) templ.Component {
	if !cond {
		return nil
	}
	return c
}
