// Package wizard drives the three-step registration form: per-step validation, write-through
// persistence, the sequential account-creation submit and exit confirmation.
package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical field names, shared with form inputs and the persisted blob.
const (
	FieldUsername              = "username"
	FieldEmail                 = "email"
	FieldPassword              = "password"
	FieldConfirmPassword       = "confirmPassword"
	FieldFirstName             = "firstName"
	FieldLastName              = "lastName"
	FieldAccountType           = "accountType"
	FieldPhoneNumber           = "phoneNumber"
	FieldPhysicalAddress       = "physicalAddress"
	FieldIDNumber              = "idNumber"
	FieldOccupation            = "occupation"
	FieldWorkplace             = "workplace"
	FieldEmergencyContactName  = "emergencyContactName"
	FieldEmergencyContactPhone = "emergencyContactPhone"
	FieldAgreedToTerms         = "agreedToTerms"
)

var ErrUnknownField = errors.New("unknown registration field")

type Fields struct {
	Username              string `json:"username"`
	Email                 string `json:"email"`
	Password              string `json:"password"`
	ConfirmPassword       string `json:"confirmPassword"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	AccountType           string `json:"accountType"`
	PhoneNumber           string `json:"phoneNumber"`
	PhysicalAddress       string `json:"physicalAddress"`
	IDNumber              string `json:"idNumber"`
	Occupation            string `json:"occupation"`
	Workplace             string `json:"workplace"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	AgreedToTerms         bool   `json:"agreedToTerms"`
}

func (f *Fields) text(name string) (*string, bool) {
	switch name {
	case FieldUsername:
		return &f.Username, true
	case FieldEmail:
		return &f.Email, true
	case FieldPassword:
		return &f.Password, true
	case FieldConfirmPassword:
		return &f.ConfirmPassword, true
	case FieldFirstName:
		return &f.FirstName, true
	case FieldLastName:
		return &f.LastName, true
	case FieldAccountType:
		return &f.AccountType, true
	case FieldPhoneNumber:
		return &f.PhoneNumber, true
	case FieldPhysicalAddress:
		return &f.PhysicalAddress, true
	case FieldIDNumber:
		return &f.IDNumber, true
	case FieldOccupation:
		return &f.Occupation, true
	case FieldWorkplace:
		return &f.Workplace, true
	case FieldEmergencyContactName:
		return &f.EmergencyContactName, true
	case FieldEmergencyContactPhone:
		return &f.EmergencyContactPhone, true
	}
	return nil, false
}

// Set assigns value to the named field. agreedToTerms accepts checkbox values.
func (f *Fields) Set(name, value string) error {
	if name == FieldAgreedToTerms {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "on", "1", "yes":
			f.AgreedToTerms = true
		default:
			f.AgreedToTerms = false
		}
		return nil
	}
	p, ok := f.text(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	*p = value
	return nil
}

// Get returns the named field as form text.
func (f Fields) Get(name string) string {
	if name == FieldAgreedToTerms {
		if f.AgreedToTerms {
			return "true"
		}
		return ""
	}
	if p, ok := f.text(name); ok {
		return *p
	}
	return ""
}

func (f Fields) IsEmpty() bool { return f == Fields{} }

func (f Fields) IsLandlord() bool { return f.AccountType == AccountLandlord }

func (f Fields) IsTenant() bool { return f.AccountType == AccountTenant }
