package handlers

import (
	"errors"

	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/wizard"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

const (
	msgBusy     = "A request is already in progress. Please wait."
	msgNetwork  = "Unable to reach the server. Check your connection and try again."
	msgExpired  = "Your session has expired. Please sign in again."
	msgInvalid  = "Please fix the highlighted fields."
	msgBadLogin = "Invalid username or password."
	msgGeneric  = "Something went wrong. Please try again."
)

// errorBanner turns a domain error into the message shown above a form.
func errorBanner(err error) banner.BannerProps {
	if err == nil {
		return banner.BannerProps{}
	}
	b := banner.BannerProps{Type: banner.BannerError, Dismissable: true}

	var (
		authErr   *models.AuthenticationError
		conflict  *models.UniquenessConflictError
		submitErr *wizard.SubmitError
	)
	switch {
	case errors.Is(err, models.ErrBusy):
		b.Type, b.Message = banner.BannerWarning, msgBusy
	case errors.Is(err, models.ErrNetwork):
		b.Message = msgNetwork
	case errors.Is(err, models.ErrSessionExpired):
		b.Type, b.Message = banner.BannerWarning, msgExpired
	case errors.As(err, &authErr):
		b.Message = authErr.Message
		if b.Message == "" {
			b.Message = msgBadLogin
		}
	case errors.As(err, &conflict):
		b.Message = conflict.Message
	case errors.Is(err, models.ErrValidation):
		b.Message = msgInvalid
	case errors.As(err, &submitErr):
		b.Message = "Registration failed: " + backendMessage(submitErr.Err)
	default:
		b.Message = msgGeneric
	}
	return b
}

func backendMessage(err error) string {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgGeneric
}
