package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/components/banner"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/wizard"
	"github.com/FACorreiaa/rms-templui/internal/app/middleware"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/pages"
)

const registerTitle = "Register - RMS"

type RegisterHandlers struct {
	*BaseHandler
}

func NewRegisterHandlers(base *BaseHandler) *RegisterHandlers {
	return &RegisterHandlers{BaseHandler: base}
}

func (h *RegisterHandlers) active(c *gin.Context) *wizard.Manager {
	w := client.FromContext(c).Wizard
	if !w.Mounted() {
		w.Mount(c.Request.Context())
	}
	return w
}

func (h *RegisterHandlers) render(c *gin.Context, w *wizard.Manager, notice banner.BannerProps) {
	props := pages.RegisterProps{State: w.State(), Banner: notice}
	h.RenderFragment(c, http.StatusOK, registerTitle, pages.RegisterWizard(props), pages.RegisterPage(props))
}

// applyPosted copies the current step's posted inputs into the wizard, so plain form
// posts work the same as per-field htmx updates.
func (h *RegisterHandlers) applyPosted(c *gin.Context, w *wizard.Manager) {
	for _, name := range wizard.FieldsOf(w.State().CurrentStep) {
		if _, ok := c.GetPostFormArray(name); !ok {
			continue
		}
		if err := w.SetField(c.Request.Context(), name, lastValue(c, name)); err != nil {
			h.Logger.Debug("Posted field not applied", zap.String("field", name), zap.Error(err))
		}
	}
}

func (h *RegisterHandlers) ShowRegister(c *gin.Context) {
	w := client.FromContext(c).Wizard
	w.Mount(c.Request.Context())
	props := pages.RegisterProps{State: w.State(), Banner: h.takeFlash(c)}
	h.RenderPage(c, http.StatusOK, registerTitle, "Register", pages.RegisterPage(props))
}

// SetField is the write-through endpoint behind every wizard input.
func (h *RegisterHandlers) SetField(c *gin.Context) {
	w := h.active(c)
	field := c.PostForm("field")
	err := w.SetField(c.Request.Context(), field, lastValue(c, field))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, wizard.ErrUnknownField):
		c.Status(http.StatusBadRequest)
	case errors.Is(err, models.ErrBusy):
		c.Status(http.StatusConflict)
	default:
		h.Logger.Warn("Wizard field update failed", zap.String("field", field), zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

func (h *RegisterHandlers) Next(c *gin.Context) {
	w := h.active(c)
	h.applyPosted(c, w)
	err := w.Next(c.Request.Context())
	if h.FollowRedirect(c) {
		return
	}
	h.render(c, w, stepBanner(err))
}

func (h *RegisterHandlers) Back(c *gin.Context) {
	w := h.active(c)
	h.applyPosted(c, w)
	err := w.Back(c.Request.Context())
	h.render(c, w, stepBanner(err))
}

// Submit runs the account-creation sequence. It is detached from the request so that
// leaving the page does not abort a half-created account; the wizard drops stale results.
func (h *RegisterHandlers) Submit(c *gin.Context) {
	w := h.active(c)
	h.applyPosted(c, w)

	result, err := w.Submit(context.WithoutCancel(c.Request.Context()))
	if h.FollowRedirect(c) {
		return
	}
	if err != nil {
		if !errors.Is(err, wizard.ErrStale) {
			h.Logger.Info("Registration not completed", zap.Error(err))
		}
		h.render(c, w, stepBanner(err))
		return
	}

	h.addFlash(c, banner.BannerSuccess, result.Message)
	middleware.Redirect(c, result.RedirectTo)
}

func (h *RegisterHandlers) Exit(c *gin.Context) {
	w := h.active(c)
	if w.RequestExit(c.Request.Context()) == wizard.ExitNow {
		middleware.Redirect(c, w.ConfirmExit(c.Request.Context()))
		return
	}
	h.render(c, w, banner.BannerProps{})
}

func (h *RegisterHandlers) ConfirmExit(c *gin.Context) {
	w := client.FromContext(c).Wizard
	middleware.Redirect(c, w.ConfirmExit(c.Request.Context()))
}

func (h *RegisterHandlers) CancelExit(c *gin.Context) {
	w := h.active(c)
	w.CancelExit()
	h.render(c, w, banner.BannerProps{})
}

// stepBanner hides errors the form already shows inline.
func stepBanner(err error) banner.BannerProps {
	var conflict *models.UniquenessConflictError
	switch {
	case err == nil, errors.Is(err, wizard.ErrStale):
		return banner.BannerProps{}
	case errors.Is(err, models.ErrValidation), errors.As(err, &conflict):
		return banner.BannerProps{}
	case errors.Is(err, wizard.ErrNotTerminalStep):
		return banner.BannerProps{Type: banner.BannerWarning, Message: err.Error(), Dismissable: true}
	}
	return errorBanner(err)
}
