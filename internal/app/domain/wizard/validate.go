package wizard

import (
	"regexp"
	"strings"
)

type Step int

const (
	StepAccountDetails Step = iota
	StepPersonalInformation
	StepTermsAndReview
)

const lastStep = StepTermsAndReview

func (s Step) String() string {
	switch s {
	case StepAccountDetails:
		return "Account Details"
	case StepPersonalInformation:
		return "Personal Information"
	case StepTermsAndReview:
		return "Terms & Review"
	}
	return "Unknown"
}

// Steps lists every step in order.
func Steps() []Step {
	return []Step{StepAccountDetails, StepPersonalInformation, StepTermsAndReview}
}

func clampStep(s Step) Step {
	if s < StepAccountDetails {
		return StepAccountDetails
	}
	if s > lastStep {
		return lastStep
	}
	return s
}

// Account types a visitor may register as. Admins are never self-registered.
const (
	AccountTenant   = "tenant"
	AccountLandlord = "landlord"
)

const (
	minPasswordLen = 8
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

const (
	msgPhoneTaken = "This phone number is already registered to another landlord"
	msgPhoneInUse = "This phone number is already registered"
)

func phoneTakenMessage(landlord bool) string {
	if landlord {
		return msgPhoneTaken
	}
	return msgPhoneInUse
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type rule struct {
	field   string
	message string
	when    func(Fields) bool
}

func required(field, message string) rule {
	return rule{field: field, message: message, when: func(f Fields) bool {
		return strings.TrimSpace(f.Get(field)) == ""
	}}
}

func tenantOnly(r rule) rule {
	inner := r.when
	r.when = func(f Fields) bool { return f.IsTenant() && inner(f) }
	return r
}

// Rules are evaluated in order and the first failing rule per field wins.
var stepRules = map[Step][]rule{
	StepAccountDetails: {
		required(FieldUsername, "Username is required"),
		required(FieldEmail, "Email is required"),
		{FieldEmail, "Please enter a valid email address", func(f Fields) bool {
			return !emailPattern.MatchString(strings.TrimSpace(f.Email))
		}},
		required(FieldPassword, "Password is required"),
		{FieldPassword, "Password must be at least 8 characters long", func(f Fields) bool {
			return len([]rune(f.Password)) < minPasswordLen
		}},
		required(FieldConfirmPassword, "Please confirm your password"),
		{FieldConfirmPassword, "Passwords do not match", func(f Fields) bool {
			return f.ConfirmPassword != f.Password
		}},
		required(FieldAccountType, "Account type is required"),
		{FieldAccountType, "Choose either tenant or landlord", func(f Fields) bool {
			return !f.IsTenant() && !f.IsLandlord()
		}},
	},
	StepPersonalInformation: {
		required(FieldPhoneNumber, "Phone number is required"),
		{FieldPhoneNumber, "Please enter a valid phone number (10-15 digits)", func(f Fields) bool {
			n := phoneDigits(f.PhoneNumber)
			return n < minPhoneDigits || n > maxPhoneDigits
		}},
		required(FieldPhysicalAddress, "Physical address is required"),
		required(FieldIDNumber, "ID number is required"),
		tenantOnly(required(FieldOccupation, "Occupation is required")),
		tenantOnly(required(FieldEmergencyContactName, "Emergency contact name is required")),
		tenantOnly(required(FieldEmergencyContactPhone, "Emergency contact phone is required")),
	},
	StepTermsAndReview: {
		{FieldAgreedToTerms, "You must agree to the terms and conditions", func(f Fields) bool {
			return !f.AgreedToTerms
		}},
	},
}

// ValidateStep returns field errors for step; an empty map means the step is valid.
func ValidateStep(step Step, f Fields) map[string]string {
	errs := make(map[string]string)
	for _, r := range stepRules[step] {
		if _, seen := errs[r.field]; seen {
			continue
		}
		if r.when(f) {
			errs[r.field] = r.message
		}
	}
	return errs
}

func phoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// stepOf reports which step collects field.
func stepOf(field string) Step {
	switch field {
	case FieldUsername, FieldEmail, FieldPassword, FieldConfirmPassword,
		FieldFirstName, FieldLastName, FieldAccountType:
		return StepAccountDetails
	case FieldAgreedToTerms:
		return StepTermsAndReview
	}
	return StepPersonalInformation
}

var stepFields = map[Step][]string{
	StepAccountDetails: {
		FieldUsername, FieldEmail, FieldPassword, FieldConfirmPassword,
		FieldFirstName, FieldLastName, FieldAccountType,
	},
	StepPersonalInformation: {
		FieldPhoneNumber, FieldPhysicalAddress, FieldIDNumber,
		FieldOccupation, FieldWorkplace, FieldEmergencyContactName, FieldEmergencyContactPhone,
	},
	StepTermsAndReview: {FieldAgreedToTerms},
}

// FieldsOf lists the inputs a step collects.
func FieldsOf(step Step) []string {
	return stepFields[clampStep(step)]
}
