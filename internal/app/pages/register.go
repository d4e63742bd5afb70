package pages

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	ui "github.com/FACorreiaa/rms-templui/internal/app/components"
	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/components/button"
	"github.com/FACorreiaa/rms-templui/internal/app/components/form"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/wizard"
)

// Wizard endpoints. Buttons carry both formaction and hx-post so the form works without HTMX.
const (
	RegisterFieldPath       = "/register/field"
	RegisterNextPath        = "/register/next"
	RegisterBackPath        = "/register/back"
	RegisterSubmitPath      = "/register/submit"
	RegisterExitPath        = "/register/exit"
	RegisterExitConfirmPath = "/register/exit/confirm"
	RegisterExitCancelPath  = "/register/exit/cancel"
)

type RegisterProps struct {
	State  wizard.State
	Banner banner.BannerProps
}

func RegisterPage(p RegisterProps) templ.Component {
	return ui.El("section", ui.Attrs{ui.A("class", "mx-auto max-w-xl space-y-6")},
		ui.El("h1", ui.Attrs{ui.A("class", "text-2xl font-semibold")}, ui.Text("Create your account")),
		RegisterWizard(p),
	)
}

// RegisterWizard is the swappable part of the registration page.
func RegisterWizard(p RegisterProps) templ.Component {
	s := p.State
	return ui.El("form", ui.Attrs{
		ui.A("id", "wizard"),
		ui.A("method", "post"),
		ui.A("action", RegisterNextPath),
		ui.A("hx-target", "#wizard"),
		ui.A("hx-swap", "outerHTML"),
		ui.A("data-step", strconv.Itoa(int(s.CurrentStep))),
		ui.A("class", "space-y-6 rounded-lg border bg-white p-6 shadow-sm"),
	},
		stepper(s.CurrentStep),
		banner.Banner(p.Banner),
		stepBody(s),
		actions(s),
		ui.When(s.Confirming, exitDialog()),
	)
}

func stepper(current wizard.Step) templ.Component {
	items := make([]templ.Component, 0, len(wizard.Steps()))
	for _, step := range wizard.Steps() {
		class := "flex-1 border-t-4 pt-2 text-xs font-medium text-gray-400"
		switch {
		case step == current:
			class = ui.Class(class, "border-primary text-primary")
		case step < current:
			class = ui.Class(class, "border-green-500 text-green-600")
		}
		items = append(items, ui.El("li", ui.Attrs{
			ui.A("class", class),
			ui.If(step == current, ui.A("aria-current", "step")),
		}, ui.Text(strconv.Itoa(int(step)+1)+". "+step.String())))
	}
	return ui.El("ol", ui.Attrs{ui.A("class", "flex gap-3")}, items...)
}

// writeThrough persists a field as soon as it changes.
func writeThrough(name string) ui.Attrs {
	return ui.Attrs{
		ui.A("hx-post", RegisterFieldPath),
		ui.A("hx-trigger", "change"),
		ui.A("hx-swap", "none"),
		ui.A("hx-vals", `{"field":"`+name+`"}`),
	}
}

func input(s wizard.State, name, label, typ string, required bool) templ.Component {
	return form.Input(form.FieldProps{
		Name:       name,
		Label:      label,
		Type:       typ,
		Value:      s.Fields.Get(name),
		Error:      s.FieldErrors[name],
		Required:   required,
		Attributes: writeThrough(name),
	})
}

func stepBody(s wizard.State) templ.Component {
	switch s.CurrentStep {
	case wizard.StepPersonalInformation:
		return personalStep(s)
	case wizard.StepTermsAndReview:
		return reviewStep(s)
	}
	return accountStep(s)
}

func accountStep(s wizard.State) templ.Component {
	return ui.El("fieldset", ui.Attrs{ui.A("class", "space-y-4")},
		ui.El("legend", ui.Attrs{ui.A("class", "text-lg font-medium")}, ui.Text(wizard.StepAccountDetails.String())),
		input(s, wizard.FieldUsername, "Username", "text", true),
		input(s, wizard.FieldEmail, "Email", "email", true),
		input(s, wizard.FieldPassword, "Password", "password", true),
		input(s, wizard.FieldConfirmPassword, "Confirm password", "password", true),
		ui.El("div", ui.Attrs{ui.A("class", "grid grid-cols-2 gap-4")},
			input(s, wizard.FieldFirstName, "First name", "text", false),
			input(s, wizard.FieldLastName, "Last name", "text", false),
		),
		form.Select(form.FieldProps{
			Name:       wizard.FieldAccountType,
			Label:      "I am a",
			Value:      s.Fields.AccountType,
			Error:      s.FieldErrors[wizard.FieldAccountType],
			Required:   true,
			Attributes: writeThrough(wizard.FieldAccountType),
		}, []form.Option{
			{Value: wizard.AccountTenant, Label: "Tenant"},
			{Value: wizard.AccountLandlord, Label: "Landlord"},
		}),
	)
}

func personalStep(s wizard.State) templ.Component {
	idLabel := "ID number"
	if s.Fields.IsTenant() {
		idLabel = "ID or passport number"
	}
	return ui.El("fieldset", ui.Attrs{ui.A("class", "space-y-4")},
		ui.El("legend", ui.Attrs{ui.A("class", "text-lg font-medium")}, ui.Text(wizard.StepPersonalInformation.String())),
		input(s, wizard.FieldPhoneNumber, "Phone number", "tel", true),
		input(s, wizard.FieldPhysicalAddress, "Physical address", "text", true),
		input(s, wizard.FieldIDNumber, idLabel, "text", true),
		ui.When(s.Fields.IsTenant(), ui.Group(
			input(s, wizard.FieldOccupation, "Occupation", "text", true),
			input(s, wizard.FieldWorkplace, "Workplace", "text", false),
			input(s, wizard.FieldEmergencyContactName, "Emergency contact name", "text", true),
			input(s, wizard.FieldEmergencyContactPhone, "Emergency contact phone", "tel", true),
		)),
	)
}

func reviewStep(s wizard.State) templ.Component {
	f := s.Fields
	rows := [][2]string{
		{"Username", f.Username},
		{"Email", f.Email},
		{"Name", strings.TrimSpace(f.FirstName + " " + f.LastName)},
		{"Account type", titleCase(f.AccountType)},
		{"Phone number", f.PhoneNumber},
		{"Physical address", f.PhysicalAddress},
		{"ID number", f.IDNumber},
	}
	if f.IsTenant() {
		rows = append(rows,
			[2]string{"Occupation", f.Occupation},
			[2]string{"Workplace", f.Workplace},
			[2]string{"Emergency contact", strings.TrimSpace(f.EmergencyContactName + " " + f.EmergencyContactPhone)},
		)
	}

	summary := make([]templ.Component, 0, len(rows))
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		summary = append(summary, ui.El("div", ui.Attrs{ui.A("class", "flex justify-between py-1")},
			ui.El("dt", ui.Attrs{ui.A("class", "text-gray-500")}, ui.Text(r[0])),
			ui.El("dd", ui.Attrs{ui.A("class", "font-medium")}, ui.Text(r[1])),
		))
	}

	return ui.El("fieldset", ui.Attrs{ui.A("class", "space-y-4")},
		ui.El("legend", ui.Attrs{ui.A("class", "text-lg font-medium")}, ui.Text(wizard.StepTermsAndReview.String())),
		ui.El("dl", ui.Attrs{ui.A("id", "review"), ui.A("class", "divide-y text-sm")}, summary...),
		form.Checkbox(form.FieldProps{
			Name:       wizard.FieldAgreedToTerms,
			Label:      "I agree to the terms and conditions",
			Error:      s.FieldErrors[wizard.FieldAgreedToTerms],
			Required:   true,
			Attributes: writeThrough(wizard.FieldAgreedToTerms),
		}, f.AgreedToTerms),
	)
}

func action(id, path, label string, variant button.Variant, disabled bool, extra ...ui.Attr) templ.Component {
	attrs := ui.Attrs{ui.A("formaction", path), ui.A("hx-post", path)}
	return button.Button(button.Props{
		ID:         id,
		Type:       button.TypeSubmit,
		Variant:    variant,
		Disabled:   disabled,
		Label:      label,
		Attributes: append(attrs, extra...),
	})
}

func actions(s wizard.State) templ.Component {
	primary := action("wizard-next", RegisterNextPath, "Next", button.VariantDefault, s.Pending)
	if s.CurrentStep == wizard.StepTermsAndReview {
		primary = action("wizard-submit", RegisterSubmitPath, "Create account", button.VariantDefault, s.Pending)
	}
	return ui.El("div", ui.Attrs{ui.A("class", "flex items-center justify-between")},
		action("wizard-exit", RegisterExitPath, "Exit", button.VariantGhost, false, ui.Flag("formnovalidate")),
		ui.El("div", ui.Attrs{ui.A("class", "flex gap-2")},
			ui.When(s.CurrentStep > wizard.StepAccountDetails,
				action("wizard-back", RegisterBackPath, "Back", button.VariantOutline, s.Pending, ui.Flag("formnovalidate"))),
			primary,
		),
	)
}

func exitDialog() templ.Component {
	return ui.El("div", ui.Attrs{
		ui.A("id", "exit-dialog"),
		ui.A("role", "alertdialog"),
		ui.A("aria-modal", "true"),
		ui.A("class", "rounded-md border border-yellow-300 bg-yellow-50 p-4"),
	},
		ui.El("p", ui.Attrs{ui.A("class", "mb-3 text-sm")},
			ui.Text("You have unsaved registration details. Leave and discard them?")),
		ui.El("div", ui.Attrs{ui.A("class", "flex gap-2")},
			action("exit-confirm", RegisterExitConfirmPath, "Discard and leave", button.VariantDestructive, false, ui.Flag("formnovalidate")),
			action("exit-cancel", RegisterExitCancelPath, "Keep editing", button.VariantOutline, false, ui.Flag("formnovalidate")),
		),
	)
}
