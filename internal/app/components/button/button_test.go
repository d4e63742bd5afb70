package button

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"

	"github.com/FACorreiaa/rms-templui/internal/app/components"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("failed to read rendered HTML: %v", err)
	}
	return doc
}

func TestButton(t *testing.T) {
	t.Run("it renders a button element", func(t *testing.T) {
		doc := render(t, Button(Props{ID: "next-step", Type: TypeSubmit, Label: "Next"}))

		btn := doc.Find("button#next-step")
		if btn.Length() != 1 {
			t.Fatal("expected a button element to be rendered, but it wasn't")
		}
		if typeAttr, _ := btn.Attr("type"); typeAttr != "submit" {
			t.Errorf(`expected type to be "submit", but got "%s"`, typeAttr)
		}
		if btn.Text() != "Next" {
			t.Errorf(`expected label "Next", got %q`, btn.Text())
		}
	})

	t.Run("it renders an anchor element when href is provided", func(t *testing.T) {
		doc := render(t, Button(Props{ID: "to-register", Href: "/register"}))

		if href, _ := doc.Find("a#to-register").Attr("href"); href != "/register" {
			t.Errorf(`expected href to be "/register", but got "%s"`, href)
		}
	})

	t.Run("it applies variant and size classes", func(t *testing.T) {
		doc := render(t, Button(Props{Variant: VariantDestructive, Size: SizeLg}))

		btn := doc.Find("button")
		for _, class := range []string{"bg-destructive", "h-10"} {
			if !btn.HasClass(class) {
				t.Errorf("expected class %q to be present", class)
			}
		}
		if btn.HasClass("bg-primary") || btn.HasClass("h-9") {
			t.Error("expected default classes to be merged away")
		}
	})

	t.Run("disabled buttons carry the attribute", func(t *testing.T) {
		doc := render(t, Button(Props{Disabled: true, Attributes: components.Attrs{components.A("hx-post", "/register/submit")}}))

		btn := doc.Find("button")
		if _, ok := btn.Attr("disabled"); !ok {
			t.Error("expected disabled attribute")
		}
		if v, _ := btn.Attr("hx-post"); v != "/register/submit" {
			t.Errorf("expected hx-post to be passed through, got %q", v)
		}
	})
}

func TestButtonChildren(t *testing.T) {
	doc := render(t, Button())
	if doc.Find("button").Text() != "" {
		t.Errorf("expected button to have no child content, but it did")
	}

	ctx := templ.WithChildren(context.Background(), components.Text("Click me"))
	var sb strings.Builder
	if err := Button().Render(ctx, &sb); err != nil {
		t.Fatalf("failed to render button: %v", err)
	}
	if !strings.Contains(sb.String(), "Click me") {
		t.Errorf("expected children to be rendered, got %s", sb.String())
	}
}
