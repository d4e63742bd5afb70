package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/navigation"
	"github.com/FACorreiaa/rms-templui/internal/app/middleware"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/pages"
)

type AuthHandlers struct {
	*BaseHandler
	rememberTTL  time.Duration
	secureCookie bool
}

func NewAuthHandlers(base *BaseHandler, rememberTTL time.Duration, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{BaseHandler: base, rememberTTL: rememberTTL, secureCookie: secureCookie}
}

// ShowLogin renders the sign-in form. Signed-in users go straight to their landing path.
func (h *AuthHandlers) ShowLogin(c *gin.Context) {
	b := client.FromContext(c)
	snap := b.Machine.CurrentState()
	switch {
	case snap.IsBootstrapping:
		h.RenderPage(c, http.StatusOK, "Loading - RMS", "", pages.Loading(c.Request.URL.RequestURI()))
		return
	case snap.IsAuthenticated:
		middleware.Redirect(c, navigation.ResolveLandingPath(snap.Role))
		return
	}

	props := pages.LoginProps{Banner: h.takeFlash(c)}
	if next := c.Query("next"); navigation.SafeReturnPath(next) {
		props.Next = next
	}
	h.RenderPage(c, http.StatusOK, "Sign In - RMS", "Sign in", pages.LoginPage(props))
}

// Login signs the browser in and sends it to next or its role's landing path.
func (h *AuthHandlers) Login(c *gin.Context) {
	b := client.FromContext(c)
	username := strings.TrimSpace(c.PostForm("username"))
	rememberMe := lastValue(c, "remember_me") == "true"
	next := c.PostForm("next")

	role, err := b.Auth.SignIn(c.Request.Context(), username, c.PostForm("password"), rememberMe)
	if err != nil {
		h.Logger.Info("Sign-in rejected", zap.String("username", username), zap.Error(err))
		props := pages.LoginProps{
			Username:   username,
			RememberMe: rememberMe,
			Banner:     errorBanner(err),
		}
		if navigation.SafeReturnPath(next) {
			props.Next = next
		}
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			props.FieldErrors = verr.Fields
		}
		h.RenderFragment(c, loginStatus(err), "Sign In - RMS", pages.LoginForm(props), pages.LoginPage(props))
		return
	}

	if err := client.Remember(c, rememberMe, h.rememberTTL, h.secureCookie); err != nil {
		h.Logger.Warn("Failed to update client cookie", zap.Error(err))
	}

	target := navigation.ResolveLandingPath(role)
	if navigation.SafeReturnPath(next) {
		target = next
	}
	middleware.Redirect(c, target)
}

// Logout is idempotent; the machine always asks for a hard redirect to the landing page.
func (h *AuthHandlers) Logout(c *gin.Context) {
	b := client.FromContext(c)
	b.Auth.SignOut(c.Request.Context())
	if err := client.Remember(c, false, 0, h.secureCookie); err != nil {
		h.Logger.Warn("Failed to update client cookie", zap.Error(err))
	}
	if !h.FollowRedirect(c) {
		middleware.Redirect(c, navigation.PublicLandingPath)
	}
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, models.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// lastValue returns the last posted value of key. Checkboxes post a hidden "false"
// before the real value.
func lastValue(c *gin.Context, key string) string {
	vals := c.PostFormArray(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}
